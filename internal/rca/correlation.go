package rca

import (
	"fmt"
	"math"

	"github.com/udmtek/udml-core/internal/domain"
)

// correlationDetector flags known signal pairs whose historical coupling
// breaks in the current snapshot: two signals that always moved together
// suddenly pulling in opposite directions.
type correlationDetector struct {
	th Thresholds
}

func (d *correlationDetector) name() string { return "correlation" }

func (d *correlationDetector) detect(data *domain.DiagnosticData) ([]domain.Fault, error) {
	var faults []domain.Fault
	usable := false
	for _, pair := range correlatedPairs {
		a := data.HistoryOf(pair.a)
		b := data.HistoryOf(pair.b)
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		if n < d.th.MinHistory {
			continue
		}
		va, okA := data.Signals[pair.a]
		vb, okB := data.Signals[pair.b]
		if !okA || !okB {
			continue
		}
		usable = true

		a, b = a[len(a)-n:], b[len(b)-n:]
		r := pearson(a, b)
		if math.Abs(r) < d.th.CorrelationMin {
			continue
		}

		deltaA := va - a[n-1]
		deltaB := vb - b[n-1]
		_, stdA := meanStddev(a)
		_, stdB := meanStddev(b)
		if math.Abs(deltaA) <= stdA || math.Abs(deltaB) <= stdB {
			continue
		}
		// Positive coupling broken by opposite moves, negative coupling
		// broken by parallel moves.
		if (r > 0) == (deltaA*deltaB > 0) {
			continue
		}

		faults = append(faults, domain.Fault{
			Category: pair.category,
			Severity: domain.SeverityMedium,
			Description: fmt.Sprintf("%s and %s (historical r=%.2f) diverged: deltas %.2f vs %.2f",
				pair.a, pair.b, r, deltaA, deltaB),
			RootCause:  "coupled signals decorrelated, one measurement path or actuator misbehaving",
			Actions:    []string{"cross-check both transmitters against a reference", "inspect the shared mechanical path"},
			Confidence: math.Abs(r) * 0.9,
			Evidence:   []string{"signal:" + pair.a, "signal:" + pair.b},
		})
	}
	if !usable {
		return nil, &domain.InsufficientDataError{Source: d.name(), Field: "history"}
	}
	return faults, nil
}

func pearson(a, b []float64) float64 {
	ma, sa := meanStddev(a)
	mb, sb := meanStddev(b)
	if sa == 0 || sb == 0 {
		return 0
	}
	var cov float64
	for i := range a {
		cov += (a[i] - ma) * (b[i] - mb)
	}
	cov /= float64(len(a))
	return cov / (sa * sb)
}
