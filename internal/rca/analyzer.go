// Package rca infers ranked root-cause hypotheses from diagnostic
// snapshots. Four independent detectors run over the same read-only input;
// their candidates are deduplicated and ranked deterministically, so the
// output never depends on goroutine scheduling.
package rca

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

type detector interface {
	name() string
	detect(data *domain.DiagnosticData) ([]domain.Fault, error)
}

// Analyzer is safe for concurrent use: it holds only the read-only rule
// base and thresholds.
type Analyzer struct {
	detectors []detector
	obs       ports.Observability

	now   func() time.Time
	newID func() string
}

func NewAnalyzer(th Thresholds, obs ports.Observability) *Analyzer {
	return &Analyzer{
		detectors: []detector{
			&patternDetector{th: th},
			&anomalyDetector{th: th},
			&sequenceDetector{th: th},
			&correlationDetector{th: th},
		},
		obs:   obs,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Analyze runs all detectors over the snapshot and returns faults ordered
// by severity descending, then confidence descending. A detector that lacks
// the fields it needs is skipped; the call fails only on nil input or
// context cancellation.
func (a *Analyzer) Analyze(ctx context.Context, data *domain.DiagnosticData) ([]domain.Fault, error) {
	if data == nil {
		return nil, fmt.Errorf("analyze: nil diagnostic data")
	}

	results := make([][]domain.Fault, len(a.detectors))
	errs := make([]error, len(a.detectors))

	var wg sync.WaitGroup
	for i, det := range a.detectors {
		wg.Add(1)
		go func(i int, det detector) {
			defer wg.Done()
			results[i], errs[i] = det.detect(data)
		}(i, det)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []domain.Fault
	for i, err := range errs {
		if err != nil {
			var insufficient *domain.InsufficientDataError
			if errors.As(err, &insufficient) {
				a.obs.RecordSkipped(a.detectors[i].name(), err)
				continue
			}
			a.obs.LogError("detector failed", err, ports.Field{Key: "detector", Value: a.detectors[i].name()})
			continue
		}
		candidates = append(candidates, results[i]...)
	}

	faults := dedupe(candidates)
	rank(faults)

	at := a.now()
	for i := range faults {
		faults[i].ID = a.newID()
		faults[i].DetectedAt = at
	}
	return faults, nil
}

// dedupe collapses candidates sharing a category and at least one evidence
// item into the highest-confidence one, with the evidence sets merged.
func dedupe(candidates []domain.Fault) []domain.Fault {
	var kept []domain.Fault
	for _, c := range candidates {
		merged := false
		for i := range kept {
			if kept[i].Category != c.Category || !evidenceIntersects(kept[i].Evidence, c.Evidence) {
				continue
			}
			if c.Confidence > kept[i].Confidence {
				c.Evidence = evidenceUnion(kept[i].Evidence, c.Evidence)
				kept[i] = c
			} else {
				kept[i].Evidence = evidenceUnion(kept[i].Evidence, c.Evidence)
			}
			merged = true
			break
		}
		if !merged {
			kept = append(kept, c)
		}
	}
	return kept
}

func evidenceIntersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func evidenceUnion(a, b []string) []string {
	set := map[string]struct{}{}
	for _, x := range a {
		set[x] = struct{}{}
	}
	for _, y := range b {
		set[y] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for x := range set {
		out = append(out, x)
	}
	sort.Strings(out)
	return out
}

func rank(faults []domain.Fault) {
	sort.SliceStable(faults, func(i, j int) bool {
		if faults[i].Severity != faults[j].Severity {
			return faults[i].Severity > faults[j].Severity
		}
		if faults[i].Confidence != faults[j].Confidence {
			return faults[i].Confidence > faults[j].Confidence
		}
		if faults[i].Category != faults[j].Category {
			return faults[i].Category < faults[j].Category
		}
		return faults[i].Description < faults[j].Description
	})
}
