package queue

import (
	"sync"

	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

// MemQueue is a bounded in-memory snapshot queue that preserves FIFO
// ordering between the acquisition side and the analysis side.
type MemQueue struct {
	mu   sync.Mutex
	data []ports.QueuedSnapshot
	cap  int
}

func NewMemQueue(capacity int) *MemQueue {
	return &MemQueue{
		data: make([]ports.QueuedSnapshot, 0, capacity),
		cap:  capacity,
	}
}

func (q *MemQueue) Enqueue(id ports.JournalEntryID, s *domain.DiagnosticData) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) >= q.cap {
		return false
	}
	q.data = append(q.data, ports.QueuedSnapshot{ID: id, Snapshot: s})
	return true
}

func (q *MemQueue) DequeueBatch(max int) []ports.QueuedSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return nil
	}
	if max <= 0 || max > len(q.data) {
		max = len(q.data)
	}
	out := make([]ports.QueuedSnapshot, max)
	copy(out, q.data[:max])
	q.data = append(q.data[:0], q.data[max:]...)
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

var _ ports.SnapshotQueue = (*MemQueue)(nil)
