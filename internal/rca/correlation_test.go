package rca

import (
	"errors"
	"testing"

	"github.com/udmtek/udml-core/internal/domain"
)

func coupledHistory(n int) []map[string]float64 {
	hist := make([]map[string]float64, 0, n)
	for i := 0; i < n; i++ {
		hist = append(hist, map[string]float64{
			"motor_current":     float64(i + 1),
			"motor_temperature": float64(2 * (i + 1)),
		})
	}
	return hist
}

func TestCorrelationBreakFlagged(t *testing.T) {
	d := &correlationDetector{th: DefaultThresholds()}
	// Perfectly coupled history; now current rises while temperature drops.
	faults, err := d.detect(&domain.DiagnosticData{
		Signals: map[string]float64{
			"motor_current":     20,
			"motor_temperature": 5,
		},
		History: coupledHistory(10),
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(faults) != 1 {
		t.Fatalf("expected one fault, got %+v", faults)
	}
	f := faults[0]
	if f.Category != domain.FaultMotorOverload || f.Severity != domain.SeverityMedium {
		t.Fatalf("correlation break = %v/%v", f.Category, f.Severity)
	}
	if len(f.Evidence) != 2 {
		t.Fatalf("evidence must name both signals, got %v", f.Evidence)
	}
}

func TestCorrelationParallelMoveIsQuiet(t *testing.T) {
	d := &correlationDetector{th: DefaultThresholds()}
	faults, err := d.detect(&domain.DiagnosticData{
		Signals: map[string]float64{
			"motor_current":     20,
			"motor_temperature": 40,
		},
		History: coupledHistory(10),
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(faults) != 0 {
		t.Fatalf("coupled signals moving together are healthy, got %+v", faults)
	}
}

func TestCorrelationSmallMovesIgnored(t *testing.T) {
	d := &correlationDetector{th: DefaultThresholds()}
	// Deltas inside one standard deviation are noise, not a break.
	faults, err := d.detect(&domain.DiagnosticData{
		Signals: map[string]float64{
			"motor_current":     11,
			"motor_temperature": 19,
		},
		History: coupledHistory(10),
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(faults) != 0 {
		t.Fatalf("got %+v", faults)
	}
}

func TestCorrelationShortHistoryInsufficient(t *testing.T) {
	d := &correlationDetector{th: DefaultThresholds()}
	_, err := d.detect(&domain.DiagnosticData{
		Signals: map[string]float64{
			"motor_current":     20,
			"motor_temperature": 5,
		},
		History: coupledHistory(3),
	})
	var insufficient *domain.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if insufficient.Source != "correlation" {
		t.Fatalf("source = %q", insufficient.Source)
	}
}
