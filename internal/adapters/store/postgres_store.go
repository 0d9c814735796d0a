package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

// PostgresStore persists analysis output. All writes are idempotent per ID
// (ON CONFLICT DO NOTHING), so journal replays after a crash do not
// duplicate rows. The driver is github.com/lib/pq; callers own the *sql.DB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) SaveProgram(p *domain.Program) error {
	if p == nil {
		return fmt.Errorf("save program: nil program")
	}
	blocks, err := json.Marshal(p.Blocks)
	if err != nil {
		return fmt.Errorf("marshal blocks: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO programs (vendor, translated_at, blocks) VALUES ($1,$2,$3)`+
			` ON CONFLICT (vendor, translated_at) DO UPDATE SET blocks = EXCLUDED.blocks`,
		string(p.Vendor), p.TranslatedAt, blocks,
	)
	return err
}

func (s *PostgresStore) SaveFaults(faults []domain.Fault) error {
	if len(faults) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO faults (id, category, severity, description, root_cause, actions, confidence, evidence, detected_at) VALUES ")

	args := make([]any, 0, len(faults)*9)
	for i, f := range faults {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(placeholders(len(args), 9))
		actions, err := json.Marshal(f.Actions)
		if err != nil {
			return fmt.Errorf("marshal actions: %w", err)
		}
		evidence, err := json.Marshal(f.Evidence)
		if err != nil {
			return fmt.Errorf("marshal evidence: %w", err)
		}
		args = append(args,
			f.ID,
			string(f.Category),
			f.Severity.String(),
			f.Description,
			f.RootCause,
			actions,
			f.Confidence,
			evidence,
			f.DetectedAt,
		)
	}

	b.WriteString(" ON CONFLICT (id) DO NOTHING")

	_, err := s.db.Exec(b.String(), args...)
	return err
}

func (s *PostgresStore) SaveRecommendations(recs []domain.MaintenanceRecommendation) error {
	if len(recs) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO recommendations (id, equipment_id, kind, priority, description, reasons, rul_seconds, window_start, window_end, cost, downtime_seconds) VALUES ")

	args := make([]any, 0, len(recs)*11)
	for i, r := range recs {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(placeholders(len(args), 11))
		reasons, err := json.Marshal(r.Reasons)
		if err != nil {
			return fmt.Errorf("marshal reasons: %w", err)
		}
		var rul sql.NullFloat64
		if r.RUL != nil {
			rul = sql.NullFloat64{Float64: r.RUL.Seconds(), Valid: true}
		}
		args = append(args,
			r.ID,
			r.EquipmentID,
			string(r.Kind),
			r.Priority,
			r.Description,
			reasons,
			rul,
			r.WindowStart,
			r.WindowEnd,
			r.Cost,
			r.Downtime.Seconds(),
		)
	}

	b.WriteString(" ON CONFLICT (id) DO NOTHING")

	_, err := s.db.Exec(b.String(), args...)
	return err
}

func placeholders(offset, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", offset+i+1)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

var _ ports.ReportStore = (*PostgresStore)(nil)
