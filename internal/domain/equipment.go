package domain

import "time"

// EquipmentType selects the degradation model applied to a unit.
type EquipmentType string

const (
	EquipmentMotor   EquipmentType = "motor"
	EquipmentPump    EquipmentType = "pump"
	EquipmentValve   EquipmentType = "valve"
	EquipmentSensor  EquipmentType = "sensor"
	EquipmentBearing EquipmentType = "bearing"
)

// HealthBand is the qualitative band derived from a health score.
type HealthBand string

const (
	HealthExcellent HealthBand = "EXCELLENT" // 90-100
	HealthGood      HealthBand = "GOOD"      // 70-89
	HealthFair      HealthBand = "FAIR"      // 50-69
	HealthPoor      HealthBand = "POOR"      // 30-49
	HealthCritical  HealthBand = "CRITICAL"  // 0-29
)

// BandForScore maps a health score in [0,100] onto its band.
func BandForScore(score float64) HealthBand {
	switch {
	case score >= 90:
		return HealthExcellent
	case score >= 70:
		return HealthGood
	case score >= 50:
		return HealthFair
	case score >= 30:
		return HealthPoor
	default:
		return HealthCritical
	}
}

// EquipmentStatus is the telemetry snapshot for one unit of equipment.
type EquipmentStatus struct {
	EquipmentID    string             `json:"equipment_id"`
	Type           EquipmentType      `json:"type"`
	HealthScore    float64            `json:"health_score"` // 0-100
	OperatingHours float64            `json:"operating_hours"`
	Cycles         int64              `json:"cycles"`
	LastServicedAt time.Time          `json:"last_serviced_at,omitempty"`
	Readings       map[string]float64 `json:"readings,omitempty"`
}

// Band returns the qualitative band for the unit's current score.
func (s *EquipmentStatus) Band() HealthBand {
	return BandForScore(s.HealthScore)
}
