package rca

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

// stubObs records detector skips; everything else is discarded.
type stubObs struct {
	skipped []string
}

func (s *stubObs) LogInfo(string, ...ports.Field)            {}
func (s *stubObs) LogError(string, error, ...ports.Field)    {}
func (s *stubObs) LogCritical(string, error, ...ports.Field) {}
func (s *stubObs) IncCounter(string, float64)                {}
func (s *stubObs) ObserveLatency(string, float64)            {}
func (s *stubObs) SetGauge(string, float64)                  {}
func (s *stubObs) RecordSkipped(source string, _ error)      { s.skipped = append(s.skipped, source) }

var _ ports.Observability = (*stubObs)(nil)

func fixedAnalyzer(obs ports.Observability) *Analyzer {
	a := NewAnalyzer(DefaultThresholds(), obs)
	a.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	seq := 0
	a.newID = func() string {
		seq++
		return fmt.Sprintf("fault-%03d", seq)
	}
	return a
}

func latencyHistory(values ...float64) []map[string]float64 {
	hist := make([]map[string]float64, 0, len(values))
	for _, v := range values {
		hist = append(hist, map[string]float64{"communication_latency": v})
	}
	return hist
}

func TestAnalyzeLatencySpikeWithSensorCode(t *testing.T) {
	obs := &stubObs{}
	a := fixedAnalyzer(obs)

	data := &domain.DiagnosticData{
		Signals:    map[string]float64{"communication_latency": 15},
		History:    latencyHistory(10, 12, 10, 12, 10, 12, 10, 12, 10, 12),
		ErrorCodes: []string{"E002"},
		CapturedAt: time.Date(2025, 6, 1, 11, 59, 0, 0, time.UTC),
	}
	faults, err := a.Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var comm *domain.Fault
	for i := range faults {
		if faults[i].Category == domain.FaultCommunicationTimeout {
			comm = &faults[i]
			break
		}
	}
	if comm == nil {
		t.Fatalf("no communication timeout fault in %+v", faults)
	}
	if comm.Severity < domain.SeverityHigh {
		t.Fatalf("latency spike severity %v, want >= HIGH", comm.Severity)
	}

	foundSensor := false
	for _, f := range faults {
		if f.Category == domain.FaultSensorFailure && f.Severity == domain.SeverityHigh {
			foundSensor = true
		}
	}
	if !foundSensor {
		t.Fatalf("E002 should also yield a HIGH sensor failure, got %+v", faults)
	}
}

func TestAnalyzeRankOrder(t *testing.T) {
	a := fixedAnalyzer(&stubObs{})
	data := &domain.DiagnosticData{
		Signals:    map[string]float64{"emergency_stop": 1},
		ErrorCodes: []string{"W001", "E003"},
	}
	faults, err := a.Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(faults) != 3 {
		t.Fatalf("expected 3 faults, got %d: %+v", len(faults), faults)
	}
	for i := 1; i < len(faults); i++ {
		prev, cur := faults[i-1], faults[i]
		if cur.Severity > prev.Severity {
			t.Fatalf("severity out of order at %d: %v after %v", i, cur.Severity, prev.Severity)
		}
		if cur.Severity == prev.Severity && cur.Confidence > prev.Confidence {
			t.Fatalf("confidence out of order at %d", i)
		}
	}
	if faults[0].Category != domain.FaultSafetyViolation {
		t.Fatalf("emergency stop must rank first, got %v", faults[0].Category)
	}
}

func TestAnalyzeSkipsDetectorsShortOnData(t *testing.T) {
	obs := &stubObs{}
	a := fixedAnalyzer(obs)

	// Signals only: anomaly, sequence and correlation all lack their inputs.
	data := &domain.DiagnosticData{Signals: map[string]float64{"flow": 1}}
	faults, err := a.Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("analyze must not fail on missing detector data: %v", err)
	}
	if len(faults) != 0 {
		t.Fatalf("expected no faults, got %+v", faults)
	}
	if len(obs.skipped) != 3 {
		t.Fatalf("expected 3 skipped detectors, got %v", obs.skipped)
	}
}

func TestAnalyzeNilData(t *testing.T) {
	a := fixedAnalyzer(&stubObs{})
	if _, err := a.Analyze(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil input")
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	a := fixedAnalyzer(&stubObs{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Analyze(ctx, &domain.DiagnosticData{Signals: map[string]float64{"flow": 1}}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	data := &domain.DiagnosticData{
		Signals: map[string]float64{
			"communication_latency": 15,
			"motor_current":         30,
			"emergency_stop":        1,
		},
		Parameters: map[string]float64{"rated_current": 20},
		History:    latencyHistory(10, 12, 10, 12, 10, 12, 10, 12, 10, 12),
		ErrorCodes: []string{"E001", "E002", "E003", "W001"},
		Alarms: []domain.AlarmEvent{
			{Code: "ALM_TRIP", At: time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)},
		},
	}
	first, err := fixedAnalyzer(&stubObs{}).Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := fixedAnalyzer(&stubObs{}).Analyze(context.Background(), data)
		if err != nil {
			t.Fatalf("analyze: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed:\n first %+v\nsecond %+v", i, first, again)
		}
	}
}

func TestDedupeKeepsHighestConfidence(t *testing.T) {
	candidates := []domain.Fault{
		{Category: domain.FaultMotorOverload, Confidence: 0.6, Description: "low", Evidence: []string{"signal:motor_current"}},
		{Category: domain.FaultMotorOverload, Confidence: 0.9, Description: "high", Evidence: []string{"signal:motor_current", "signal:motor_temperature"}},
		{Category: domain.FaultSensorFailure, Confidence: 0.5, Description: "other category", Evidence: []string{"signal:motor_current"}},
	}
	kept := dedupe(candidates)
	if len(kept) != 2 {
		t.Fatalf("expected 2 faults after dedupe, got %+v", kept)
	}
	if kept[0].Description != "high" || kept[0].Confidence != 0.9 {
		t.Fatalf("winner should be the high-confidence candidate, got %+v", kept[0])
	}
	want := []string{"signal:motor_current", "signal:motor_temperature"}
	if !reflect.DeepEqual(kept[0].Evidence, want) {
		t.Fatalf("evidence union = %v, want %v", kept[0].Evidence, want)
	}
}

func TestDedupeDisjointEvidenceKeptApart(t *testing.T) {
	candidates := []domain.Fault{
		{Category: domain.FaultLogicError, Confidence: 0.6, Evidence: []string{"alarm:A"}},
		{Category: domain.FaultLogicError, Confidence: 0.7, Evidence: []string{"alarm:B"}},
	}
	if kept := dedupe(candidates); len(kept) != 2 {
		t.Fatalf("disjoint evidence must not collapse, got %+v", kept)
	}
}
