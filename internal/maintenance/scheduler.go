package maintenance

import (
	"sort"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
)

// Constraints bounds schedule selection. A zero Budget or MaxDowntime means
// that dimension is unconstrained.
type Constraints struct {
	Budget      float64
	MaxDowntime time.Duration
	Start       time.Time
}

// OptimizeSchedule greedily selects recommendations in urgency order until
// the budget or downtime ceiling would be exceeded. Deterministic for
// identical inputs; the result is never an error — a partial selection sets
// Schedule.Infeasible instead.
func OptimizeSchedule(recs []domain.MaintenanceRecommendation, c Constraints) domain.Schedule {
	candidates := make([]domain.MaintenanceRecommendation, len(recs))
	copy(candidates, recs)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		if cmp := compareRUL(candidates[i].RUL, candidates[j].RUL); cmp != 0 {
			return cmp < 0
		}
		if candidates[i].Cost != candidates[j].Cost {
			return candidates[i].Cost < candidates[j].Cost
		}
		return candidates[i].EquipmentID < candidates[j].EquipmentID
	})

	var schedule domain.Schedule
	at := c.Start
	for _, rec := range candidates {
		if c.Budget > 0 && schedule.TotalCost+rec.Cost > c.Budget {
			schedule.Infeasible = true
			continue
		}
		if c.MaxDowntime > 0 && schedule.TotalDowntime+rec.Downtime > c.MaxDowntime {
			schedule.Infeasible = true
			continue
		}
		schedule.Entries = append(schedule.Entries, domain.ScheduleEntry{
			Recommendation: rec,
			ScheduledAt:    at,
		})
		schedule.TotalCost += rec.Cost
		schedule.TotalDowntime += rec.Downtime
		at = at.Add(rec.Downtime)
	}
	return schedule
}
