package udml

import (
	"errors"
	"fmt"
	"sync"

	"github.com/udmtek/udml-core/internal/domain"
)

// ErrChannelStoreClosed is returned when a channel store is written to after being closed.
var ErrChannelStoreClosed = errors.New("udml: channel store closed")

// FaultBatchFunc is invoked with ranked fault batches produced by the pipeline.
type FaultBatchFunc func([]Fault) error

// RecommendationBatchFunc is invoked with ordered recommendation batches.
type RecommendationBatchFunc func([]MaintenanceRecommendation) error

// Report bundles the outputs of one analysis pass for channel consumers.
type Report struct {
	Faults          []Fault
	Recommendations []MaintenanceRecommendation
}

// NewCallbackStore adapts plain functions into a full ports.ReportStore
// implementation so callers can plug arbitrary handlers without defining structs.
func NewCallbackStore(name string, onFaults FaultBatchFunc, onRecs RecommendationBatchFunc) ReportStore {
	if name == "" {
		name = "callback"
	}
	return &callbackStore{name: name, onFaults: onFaults, onRecs: onRecs}
}

// NewChannelStore exposes reports via a channel; it returns the store, the
// read-only channel, and a close function that the caller should invoke during
// shutdown.
func NewChannelStore(name string, buffer int) (ReportStore, <-chan Report, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Report, buffer)
	s := &channelStore{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackStore struct {
	name     string
	onFaults FaultBatchFunc
	onRecs   RecommendationBatchFunc
}

func (s *callbackStore) SaveProgram(*domain.Program) error { return nil }

func (s *callbackStore) SaveFaults(faults []domain.Fault) error {
	if s.onFaults == nil {
		return fmt.Errorf("callback store %q: nil fault handler", s.name)
	}
	if len(faults) == 0 {
		return nil
	}
	return s.onFaults(copyFaults(faults))
}

func (s *callbackStore) SaveRecommendations(recs []domain.MaintenanceRecommendation) error {
	if s.onRecs == nil {
		return fmt.Errorf("callback store %q: nil recommendation handler", s.name)
	}
	if len(recs) == 0 {
		return nil
	}
	return s.onRecs(copyRecommendations(recs))
}

func (s *callbackStore) Name() string { return s.name }

type channelStore struct {
	name   string
	ch     chan Report
	closed chan struct{}
	once   sync.Once
}

func (s *channelStore) SaveProgram(*domain.Program) error { return nil }

func (s *channelStore) SaveFaults(faults []domain.Fault) error {
	if len(faults) == 0 {
		return nil
	}
	return s.send(Report{Faults: copyFaults(faults)})
}

func (s *channelStore) SaveRecommendations(recs []domain.MaintenanceRecommendation) error {
	if len(recs) == 0 {
		return nil
	}
	return s.send(Report{Recommendations: copyRecommendations(recs)})
}

func (s *channelStore) send(r Report) error {
	select {
	case <-s.closed:
		return ErrChannelStoreClosed
	default:
	}

	select {
	case <-s.closed:
		return ErrChannelStoreClosed
	case s.ch <- r:
		return nil
	}
}

func (s *channelStore) Name() string { return s.name }

func (s *channelStore) close() {
	s.once.Do(func() {
		close(s.closed)
		close(s.ch)
	})
}

func copyFaults(src []domain.Fault) []Fault {
	out := make([]Fault, len(src))
	copy(out, src)
	return out
}

func copyRecommendations(src []domain.MaintenanceRecommendation) []MaintenanceRecommendation {
	out := make([]MaintenanceRecommendation, len(src))
	copy(out, src)
	return out
}
