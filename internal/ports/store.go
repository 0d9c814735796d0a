package ports

import "github.com/udmtek/udml-core/internal/domain"

// ReportStore receives analysis output. Implementations must be idempotent
// per ID so journal replays do not duplicate rows.
type ReportStore interface {
	SaveProgram(p *domain.Program) error
	SaveFaults(faults []domain.Fault) error
	SaveRecommendations(recs []domain.MaintenanceRecommendation) error
	Name() string
}
