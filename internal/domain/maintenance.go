package domain

import "time"

// MaintenanceKind mirrors the trigger policy that produced a recommendation.
type MaintenanceKind string

const (
	MaintenancePreventive     MaintenanceKind = "PREVENTIVE"
	MaintenanceCorrective     MaintenanceKind = "CORRECTIVE"
	MaintenancePredictive     MaintenanceKind = "PREDICTIVE"
	MaintenanceConditionBased MaintenanceKind = "CONDITION_BASED"
)

// Recommendation priorities: 1 is most urgent, 5 least.
const (
	PriorityImmediate = 1
	PriorityUrgent    = 2
	PriorityPlanned   = 3
	PriorityRoutine   = 4
	PriorityDeferred  = 5
)

// MaintenanceRecommendation is one scheduled-maintenance candidate for a
// unit of equipment. RUL is nil when no degradation model could compute it.
type MaintenanceRecommendation struct {
	ID          string          `json:"id"`
	EquipmentID string          `json:"equipment_id"`
	Kind        MaintenanceKind `json:"kind"`
	Priority    int             `json:"priority"`
	Description string          `json:"description"`
	Reasons     []string        `json:"reasons,omitempty"`
	RUL         *time.Duration  `json:"rul,omitempty"`
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	Cost        float64         `json:"estimated_cost"`
	Downtime    time.Duration   `json:"estimated_downtime"`
}

// ScheduleEntry is one selected recommendation with its planned date.
type ScheduleEntry struct {
	Recommendation MaintenanceRecommendation `json:"recommendation"`
	ScheduledAt    time.Time                 `json:"scheduled_at"`
}

// Schedule is the result of budget-constrained selection. Infeasible is set
// whenever at least one candidate had to be excluded, so a partial schedule
// is never a silent success.
type Schedule struct {
	Entries       []ScheduleEntry `json:"entries"`
	TotalCost     float64         `json:"total_cost"`
	TotalDowntime time.Duration   `json:"total_downtime"`
	Infeasible    bool            `json:"infeasible"`
}
