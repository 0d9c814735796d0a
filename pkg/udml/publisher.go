package udml

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/udmtek/udml-core/internal/adapters/journal"
	"github.com/udmtek/udml-core/internal/adapters/observability"
	"github.com/udmtek/udml-core/internal/adapters/queue"
	"github.com/udmtek/udml-core/internal/ports"
)

// ErrQueueFull indicates the in-memory queue rejected the snapshot according to policy.
var ErrQueueFull = errors.New("udml: queue full")

// ErrJournalFull indicates the journal is at capacity and OnJournalFull != "block".
var ErrJournalFull = errors.New("udml: journal full")

// SnapshotBatchFunc is invoked with ordered batches dequeued from the pipeline.
type SnapshotBatchFunc func([]*Snapshot) error

// SnapshotPublisherConfig configures the journal-backed publisher used by callers.
type SnapshotPublisherConfig struct {
	Policy  Policy
	Journal JournalConfig
}

// applyDefaults fills in sane thresholds so callers only override what they need.
func (c *SnapshotPublisherConfig) applyDefaults() {
	if c.Policy.MaxJournalSizeBytes == 0 {
		c.Policy.MaxJournalSizeBytes = 10 << 30
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 100_000
	}
	if c.Policy.MaxBatchSize == 0 {
		c.Policy.MaxBatchSize = 5_000
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
	if c.Policy.OnJournalFull == "" {
		c.Policy.OnJournalFull = "block"
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "./data/udml-journal"
	}
}

func (c *SnapshotPublisherConfig) validate() error {
	if c.Journal.Dir == "" {
		return fmt.Errorf("journal.dir is required")
	}
	if c.Policy.MaxQueueLen <= 0 {
		return fmt.Errorf("policy.max_queue_len must be > 0")
	}
	if c.Policy.MaxBatchSize <= 0 {
		return fmt.Errorf("policy.max_batch_size must be > 0")
	}
	return nil
}

// SnapshotPublisher exposes the journal→queue→consumer pipeline to external
// producers: gateways that speak Modbus, MQTT, or proprietary buses can push
// snapshots while reusing the durability and backpressure policies.
type SnapshotPublisher struct {
	policy  Policy
	journal ports.Journal
	queue   ports.SnapshotQueue
	obs     ports.Observability
	sink    SnapshotBatchFunc

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewSnapshotPublisher wires a journal + bounded queue + consumer callback so
// callers can push arbitrary snapshots while reusing the durability/backpressure
// policies.
func NewSnapshotPublisher(cfg *SnapshotPublisherConfig, sink SnapshotBatchFunc) (*SnapshotPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink callback is required")
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	jrn, err := journal.NewFileJournal(cfg.Journal.Dir)
	if err != nil {
		return nil, err
	}
	q := queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	obs := observability.NewPromObs()

	if err := replayJournalIntoQueue(jrn, q, cfg.Policy, obs); err != nil {
		return nil, err
	}

	pub := &SnapshotPublisher{
		policy:  cfg.Policy,
		journal: jrn,
		queue:   q,
		obs:     obs,
		sink:    sink,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	go pub.runDeliver()
	return pub, nil
}

// Publish appends the snapshot to the journal and enqueues it according to policy.
func (p *SnapshotPublisher) Publish(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is required")
	}

	if !waitForLocalJournalCapacity(p.journal, p.policy, p.obs) {
		return ErrJournalFull
	}

	id, err := p.journal.Append(snap)
	if err != nil {
		return err
	}

	if !enqueueWithLocalPolicy(p.queue, id, snap, p.policy, p.obs) {
		return ErrQueueFull
	}
	return nil
}

// Close waits for the delivery loop to exit, respecting the provided context.
func (p *SnapshotPublisher) Close(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})

	select {
	case <-p.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *SnapshotPublisher) runDeliver() {
	defer close(p.doneCh)
	idle := p.policy.IdleSleep
	if idle <= 0 {
		idle = 5 * time.Millisecond
	}

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		batch := p.queue.DequeueBatch(p.policy.MaxBatchSize)
		if len(batch) == 0 {
			time.Sleep(idle)
			continue
		}

		var (
			snaps = make([]*Snapshot, 0, len(batch))
			maxID ports.JournalEntryID
		)
		for _, item := range batch {
			snaps = append(snaps, item.Snapshot)
			if item.ID > maxID {
				maxID = item.ID
			}
		}

		if err := p.sink(snaps); err != nil {
			p.obs.LogError("publisher_sink_failed", err)
			time.Sleep(idle)
			continue
		}

		p.obs.IncCounter("udml_snapshots_published_total", float64(len(snaps)))
		if err := p.journal.Commit(maxID); err != nil {
			p.obs.LogError("journal_commit_failed", err)
		}
	}
}

func waitForLocalJournalCapacity(jrn ports.Journal, pol ports.Policy, obs ports.Observability) bool {
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

func enqueueWithLocalPolicy(q ports.SnapshotQueue, id ports.JournalEntryID, s *Snapshot, pol ports.Policy, obs ports.Observability) bool {
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
