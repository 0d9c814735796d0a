package ports

import "github.com/udmtek/udml-core/internal/domain"

// SnapshotCollector is implemented by acquisition adapters that materialize
// DiagnosticData snapshots from live sources (OPC UA, replays, simulators).
type SnapshotCollector interface {
	Start(out chan<- *domain.DiagnosticData) error
	Stop() error
}
