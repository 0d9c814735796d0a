package ports

import "github.com/udmtek/udml-core/internal/domain"

type JournalEntryID uint64

// Journal persists diagnostic snapshots ahead of analysis so that a crash
// between capture and commit replays the snapshot instead of losing it.
type Journal interface {
	Append(s *domain.DiagnosticData) (JournalEntryID, error)
	Iterate(from JournalEntryID, fn func(id JournalEntryID, s *domain.DiagnosticData) error) error
	Commit(upto JournalEntryID) error
	TruncateCommitted() error
	Stats() JournalStats
}

type JournalStats struct {
	OldestUnanalyzed JournalEntryID
	LatestAppended   JournalEntryID
	SizeBytes        int64
}
