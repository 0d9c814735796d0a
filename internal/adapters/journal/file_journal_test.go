package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

func snapshotAt(latency float64) *domain.DiagnosticData {
	return &domain.DiagnosticData{
		Signals:    map[string]float64{"communication_latency": latency},
		CapturedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFileJournalAppendIterateAndReplay(t *testing.T) {
	dir := t.TempDir()

	j, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}

	id1, err := j.Append(snapshotAt(10))
	if err != nil || id1 == 0 {
		t.Fatalf("append snapshot 1: %v id=%d", err, id1)
	}
	id2, err := j.Append(snapshotAt(12))
	if err != nil || id2 == 0 {
		t.Fatalf("append snapshot 2: %v id=%d", err, id2)
	}

	if err := j.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	var latencies []float64
	if err := j.Iterate(1, func(id ports.JournalEntryID, s *domain.DiagnosticData) error {
		latencies = append(latencies, s.Signals["communication_latency"])
		return nil
	}); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(latencies) != 2 || latencies[0] != 10 || latencies[1] != 12 {
		t.Fatalf("unexpected replay: %v", latencies)
	}

	if err := j.Commit(id2); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := j.file.Close(); err != nil {
		t.Fatalf("close journal: %v", err)
	}

	// Reopen and ensure the commit mark survived.
	j2, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	defer j2.file.Close()

	stats := j2.Stats()
	if stats.LatestAppended != id2 {
		t.Fatalf("expected latest appended %d, got %d", id2, stats.LatestAppended)
	}
	if stats.OldestUnanalyzed != id2+1 {
		t.Fatalf("expected oldest unanalyzed %d, got %d", id2+1, stats.OldestUnanalyzed)
	}

	// A torn tail record must be dropped on reopen, not poison the log.
	path := filepath.Join(dir, "journal.log")
	if err := appendGarbage(path); err != nil {
		t.Fatalf("append garbage: %v", err)
	}
	if err := j2.file.Close(); err != nil {
		t.Fatalf("close journal 2: %v", err)
	}
	if _, err := NewFileJournal(dir); err != nil {
		t.Fatalf("reopen after garbage: %v", err)
	}
}

func TestFileJournalTruncateCommitted(t *testing.T) {
	dir := t.TempDir()

	j, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}

	var last ports.JournalEntryID
	for i := 0; i < 5; i++ {
		id, err := j.Append(snapshotAt(float64(10 + i)))
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		last = id
	}
	if err := j.Commit(last - 2); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := j.TruncateCommitted(); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	var ids []ports.JournalEntryID
	if err := j.Iterate(0, func(id ports.JournalEntryID, _ *domain.DiagnosticData) error {
		ids = append(ids, id)
		return nil
	}); err != nil {
		t.Fatalf("iterate after truncate: %v", err)
	}
	if len(ids) != 2 || ids[0] != last-1 || ids[1] != last {
		t.Fatalf("expected the two uncommitted entries, got %v", ids)
	}

	// Appends keep numbering from where the log left off.
	id, err := j.Append(snapshotAt(99))
	if err != nil {
		t.Fatalf("append after truncate: %v", err)
	}
	if id != last+1 {
		t.Fatalf("next id = %d, want %d", id, last+1)
	}
}

func appendGarbage(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write([]byte{0xFF, 0xAA}); err != nil {
		return err
	}
	return nil
}
