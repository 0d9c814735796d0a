package ports

import "github.com/udmtek/udml-core/internal/domain"

type QueuedSnapshot struct {
	ID       JournalEntryID
	Snapshot *domain.DiagnosticData
}

type SnapshotQueue interface {
	Enqueue(id JournalEntryID, s *domain.DiagnosticData) bool
	DequeueBatch(max int) []QueuedSnapshot
	Len() int
}
