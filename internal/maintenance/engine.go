package maintenance

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

// Params bounds the recommendation triggers. Loaded once from config and
// treated as read-only.
type Params struct {
	// HealthWarn triggers a condition-based recommendation when the health
	// score drops below it; HealthCritical escalates to corrective.
	HealthWarn     float64
	HealthCritical float64
	// ServiceInterval triggers a preventive recommendation once that much
	// time has passed since the last service.
	ServiceInterval time.Duration
	// Sensor-trend limits.
	VibrationLimit   float64 // mm/s
	TemperatureLimit float64 // degrees C
	CurrentFactor    float64 // multiple of the rated current
}

func DefaultParams() Params {
	return Params{
		HealthWarn:       50,
		HealthCritical:   30,
		ServiceInterval:  180 * 24 * time.Hour,
		VibrationLimit:   10,
		TemperatureLimit: 80,
		CurrentFactor:    1.2,
	}
}

// Engine evaluates the three trigger policies over equipment snapshots.
// Safe for concurrent use.
type Engine struct {
	params Params
	obs    ports.Observability

	now   func() time.Time
	newID func() string
}

func NewEngine(params Params, obs ports.Observability) *Engine {
	return &Engine{
		params: params,
		obs:    obs,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// trigger is one fired policy before merging.
type trigger struct {
	priority int
	kind     domain.MaintenanceKind
	reason   string
}

// Predict evaluates every unit in the fleet and returns at most one merged
// recommendation per unit, ordered most urgent first. A unit with no model
// for its type still gets health/time policies; only its RUL stays unset.
func (e *Engine) Predict(fleet []domain.EquipmentStatus) ([]domain.MaintenanceRecommendation, error) {
	var recs []domain.MaintenanceRecommendation
	for i := range fleet {
		status := &fleet[i]
		if status.EquipmentID == "" {
			return nil, fmt.Errorf("predict: equipment %d has no ID", i)
		}
		if rec, ok := e.evaluate(status); ok {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority < recs[j].Priority
		}
		if c := compareRUL(recs[i].RUL, recs[j].RUL); c != 0 {
			return c < 0
		}
		return recs[i].EquipmentID < recs[j].EquipmentID
	})
	return recs, nil
}

func (e *Engine) evaluate(status *domain.EquipmentStatus) (domain.MaintenanceRecommendation, bool) {
	var triggers []trigger

	// Condition policy: health score bands.
	switch {
	case status.HealthScore < e.params.HealthCritical:
		triggers = append(triggers, trigger{
			priority: domain.PriorityImmediate,
			kind:     domain.MaintenanceCorrective,
			reason:   fmt.Sprintf("health score %.0f below critical limit %.0f", status.HealthScore, e.params.HealthCritical),
		})
	case status.HealthScore < e.params.HealthWarn:
		triggers = append(triggers, trigger{
			priority: domain.PriorityUrgent,
			kind:     domain.MaintenanceConditionBased,
			reason:   fmt.Sprintf("health score %.0f below warning limit %.0f", status.HealthScore, e.params.HealthWarn),
		})
	}

	// Time policy: elapsed time since last service.
	if status.LastServicedAt.IsZero() {
		e.obs.RecordSkipped("maintenance/time", &domain.InsufficientDataError{
			Source: "maintenance/time", Field: "last_serviced_at",
		})
	} else if since := e.now().Sub(status.LastServicedAt); since > e.params.ServiceInterval {
		triggers = append(triggers, trigger{
			priority: domain.PriorityPlanned,
			kind:     domain.MaintenancePreventive,
			reason:   fmt.Sprintf("last serviced %.0f days ago, interval is %.0f days", since.Hours()/24, e.params.ServiceInterval.Hours()/24),
		})
	}

	triggers = append(triggers, e.trendTriggers(status)...)

	if len(triggers) == 0 {
		return domain.MaintenanceRecommendation{}, false
	}

	// Merge: highest-priority trigger wins the kind, reasons are unioned.
	winner := triggers[0]
	reasons := make([]string, 0, len(triggers))
	for _, tr := range triggers {
		if tr.priority < winner.priority {
			winner = tr
		}
		reasons = append(reasons, tr.reason)
	}

	now := e.now()
	rec := domain.MaintenanceRecommendation{
		ID:          e.newID(),
		EquipmentID: status.EquipmentID,
		Kind:        winner.kind,
		Priority:    winner.priority,
		Description: fmt.Sprintf("%s maintenance for %s (%s)", winner.kind, status.EquipmentID, status.Band()),
		Reasons:     reasons,
		RUL:         remainingUsefulLife(status),
		WindowStart: now,
		WindowEnd:   now.Add(windowFor(winner.priority)),
		Cost:        costFor(status.Type, winner.priority),
		Downtime:    downtimeFor(status.Type),
	}
	return rec, true
}

// trendTriggers applies the sensor-trend policy per equipment type. A unit
// missing the readings its type needs skips this policy only.
func (e *Engine) trendTriggers(status *domain.EquipmentStatus) []trigger {
	skip := func(field string) {
		e.obs.RecordSkipped("maintenance/trend", &domain.InsufficientDataError{
			Source: "maintenance/trend", Field: field,
		})
	}

	var out []trigger
	switch status.Type {
	case domain.EquipmentBearing, domain.EquipmentPump:
		vib, ok := status.Readings["vibration"]
		if !ok {
			skip("vibration")
			return nil
		}
		if vib > e.params.VibrationLimit {
			out = append(out, trigger{
				priority: domain.PriorityUrgent,
				kind:     domain.MaintenancePredictive,
				reason:   fmt.Sprintf("vibration %.1f mm/s above limit %.1f", vib, e.params.VibrationLimit),
			})
		}
	case domain.EquipmentMotor:
		temp, hasTemp := status.Readings["temperature"]
		current, hasCurrent := status.Readings["current"]
		rated, hasRated := status.Readings["rated_current"]
		if !hasTemp && !(hasCurrent && hasRated) {
			skip("temperature")
			return nil
		}
		if hasTemp && temp > e.params.TemperatureLimit {
			out = append(out, trigger{
				priority: domain.PriorityUrgent,
				kind:     domain.MaintenancePredictive,
				reason:   fmt.Sprintf("winding temperature %.1f above limit %.1f", temp, e.params.TemperatureLimit),
			})
		}
		if hasCurrent && hasRated && current > rated*e.params.CurrentFactor {
			out = append(out, trigger{
				priority: domain.PriorityUrgent,
				kind:     domain.MaintenancePredictive,
				reason:   fmt.Sprintf("current %.1f above %.1fx rated", current, e.params.CurrentFactor),
			})
		}
	}
	return out
}

func compareRUL(a, b *time.Duration) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1 // unknown RUL sorts after known
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func windowFor(priority int) time.Duration {
	switch priority {
	case domain.PriorityImmediate:
		return 24 * time.Hour
	case domain.PriorityUrgent:
		return 7 * 24 * time.Hour
	case domain.PriorityPlanned:
		return 30 * 24 * time.Hour
	case domain.PriorityRoutine:
		return 90 * 24 * time.Hour
	default:
		return 180 * 24 * time.Hour
	}
}

var baseCost = map[domain.EquipmentType]float64{
	domain.EquipmentMotor:   5000,
	domain.EquipmentPump:    3500,
	domain.EquipmentValve:   1200,
	domain.EquipmentSensor:  400,
	domain.EquipmentBearing: 800,
}

func costFor(t domain.EquipmentType, priority int) float64 {
	cost, ok := baseCost[t]
	if !ok {
		cost = 1000
	}
	if priority == domain.PriorityImmediate {
		// Unplanned corrective work carries an expedite surcharge.
		cost *= 1.5
	}
	return cost
}

var baseDowntime = map[domain.EquipmentType]time.Duration{
	domain.EquipmentMotor:   8 * time.Hour,
	domain.EquipmentPump:    6 * time.Hour,
	domain.EquipmentValve:   2 * time.Hour,
	domain.EquipmentSensor:  1 * time.Hour,
	domain.EquipmentBearing: 4 * time.Hour,
}

func downtimeFor(t domain.EquipmentType) time.Duration {
	if d, ok := baseDowntime[t]; ok {
		return d
	}
	return 4 * time.Hour
}
