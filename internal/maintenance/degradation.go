// Package maintenance turns equipment telemetry into ranked maintenance
// recommendations and budget-constrained schedules. The degradation models
// are closed-form per equipment type and loaded once; nothing here performs
// I/O.
package maintenance

import (
	"time"

	"github.com/udmtek/udml-core/internal/domain"
)

const hoursPerYear = 8760

// lifeModel is the closed-form baseline life for one equipment type. When
// cycleLife is set the usage fraction is cycle-based, otherwise hour-based
// against the baseline duration.
type lifeModel struct {
	baseline  time.Duration
	cycleLife int64
}

var lifeModels = map[domain.EquipmentType]lifeModel{
	domain.EquipmentMotor:   {baseline: 100 * hoursPerYear * time.Hour},
	domain.EquipmentPump:    {baseline: 50 * hoursPerYear * time.Hour, cycleLife: 1_000_000},
	domain.EquipmentValve:   {baseline: 20 * hoursPerYear * time.Hour, cycleLife: 100_000},
	domain.EquipmentSensor:  {baseline: 10 * hoursPerYear * time.Hour},
	domain.EquipmentBearing: {baseline: 5 * hoursPerYear * time.Hour},
}

// remainingUsefulLife computes RUL as remaining baseline life scaled by the
// health score and the sensor-trend factor, floored at zero. Returns nil
// when no model exists for the equipment type.
func remainingUsefulLife(status *domain.EquipmentStatus) *time.Duration {
	model, ok := lifeModels[status.Type]
	if !ok {
		return nil
	}

	var usedFrac float64
	if model.cycleLife > 0 {
		usedFrac = float64(status.Cycles) / float64(model.cycleLife)
	} else {
		usedFrac = status.OperatingHours / model.baseline.Hours()
	}
	if usedFrac > 1 {
		usedFrac = 1
	}
	remaining := time.Duration(float64(model.baseline) * (1 - usedFrac))

	health := status.HealthScore / 100
	if health < 0 {
		health = 0
	} else if health > 1 {
		health = 1
	}

	rul := time.Duration(float64(remaining) * health * trendFactor(status))
	if rul < 0 {
		rul = 0
	}
	return &rul
}

// trendFactor shortens remaining life as the type's wear signal climbs.
// Bearings degrade with vibration amplitude, motors with sustained
// over-temperature; other types carry no trend adjustment.
func trendFactor(status *domain.EquipmentStatus) float64 {
	switch status.Type {
	case domain.EquipmentBearing:
		vib, ok := status.Readings["vibration"]
		if !ok || vib <= 0 {
			return 1
		}
		f := 1 - vib/50
		return clamp01(f)
	case domain.EquipmentMotor:
		temp, ok := status.Readings["temperature"]
		if !ok || temp <= 80 {
			return 1
		}
		f := 1 - (temp-80)/100
		return clamp01(f)
	default:
		return 1
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
