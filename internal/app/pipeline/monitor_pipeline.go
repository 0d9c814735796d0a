package pipeline

import (
	"fmt"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

// RunMonitorPipeline wires the acquisition side: snapshots from the
// collector are journaled, then handed to the bounded queue under the
// configured backpressure policy.
func RunMonitorPipeline(col ports.SnapshotCollector, jrn ports.Journal, q ports.SnapshotQueue, pol ports.Policy, obs ports.Observability) error {
	ch := make(chan *domain.DiagnosticData, pol.MaxQueueLen)

	if err := col.Start(ch); err != nil {
		return err
	}

	go func() {
		for s := range ch {
			if !waitForJournalCapacity(jrn, pol, obs) {
				obs.IncCounter("udml_snapshots_dropped_total", 1)
				continue
			}

			id, err := jrn.Append(s)
			if err != nil {
				obs.LogCritical("journal_append_failed", err)
				continue
			}

			if !enqueueWithPolicy(q, id, s, pol, obs) {
				obs.IncCounter("udml_snapshots_dropped_total", 1)
			}
		}
	}()

	return nil
}

func waitForJournalCapacity(jrn ports.Journal, pol ports.Policy, obs ports.Observability) bool {
	if pol.MaxJournalSizeBytes <= 0 {
		return true
	}
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		stats := jrn.Stats()
		if stats.SizeBytes < pol.MaxJournalSizeBytes {
			return true
		}

		switch pol.OnJournalFull {
		case "block":
			time.Sleep(sleep)
		case "drop":
			obs.LogError("journal_full_drop", fmt.Errorf("size=%d limit=%d", stats.SizeBytes, pol.MaxJournalSizeBytes))
			return false
		default:
			obs.LogError("journal_policy_invalid", fmt.Errorf("policy=%s", pol.OnJournalFull))
			return false
		}
	}
}

func enqueueWithPolicy(q ports.SnapshotQueue, id ports.JournalEntryID, s *domain.DiagnosticData, pol ports.Policy, obs ports.Observability) bool {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if ok := q.Enqueue(id, s); ok {
			return true
		}

		switch pol.OnQueueFull {
		case "block":
			time.Sleep(sleep)
		case "drop", "reject":
			obs.LogError("queue_full_drop", fmt.Errorf("queue length exceeded capacity %d", pol.MaxQueueLen))
			return false
		default:
			obs.LogError("queue_policy_invalid", fmt.Errorf("policy=%s", pol.OnQueueFull))
			return false
		}
	}
}
