package rca

import (
	"errors"
	"testing"

	"github.com/udmtek/udml-core/internal/domain"
)

func TestPatternErrorCodes(t *testing.T) {
	d := &patternDetector{th: DefaultThresholds()}
	faults, err := d.detect(&domain.DiagnosticData{
		ErrorCodes: []string{"E001", "E002", "E999"},
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(faults) != 2 {
		t.Fatalf("unknown codes must be ignored, got %+v", faults)
	}
	if faults[0].Category != domain.FaultCommunicationTimeout || faults[0].Severity != domain.SeverityCritical {
		t.Fatalf("E001 = %v/%v", faults[0].Category, faults[0].Severity)
	}
	if faults[1].Category != domain.FaultSensorFailure || faults[1].Severity != domain.SeverityHigh {
		t.Fatalf("E002 = %v/%v", faults[1].Category, faults[1].Severity)
	}
}

func TestPatternSignalRules(t *testing.T) {
	d := &patternDetector{th: DefaultThresholds()}
	faults, err := d.detect(&domain.DiagnosticData{
		Signals: map[string]float64{
			"motor_current":  25, // above 20 * 1.2
			"scan_time_ms":   8,  // below limit
			"emergency_stop": 1,
		},
		Parameters: map[string]float64{
			"rated_current":    20,
			"max_scan_time_ms": 10,
		},
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	got := map[domain.FaultCategory]domain.Severity{}
	for _, f := range faults {
		got[f.Category] = f.Severity
	}
	if got[domain.FaultSafetyViolation] != domain.SeverityCritical {
		t.Fatalf("emergency stop missing or wrong severity: %+v", faults)
	}
	if got[domain.FaultMotorOverload] != domain.SeverityHigh {
		t.Fatalf("overcurrent missing: %+v", faults)
	}
	if _, timing := got[domain.FaultTimingViolation]; timing {
		t.Fatalf("scan time within budget must not fire: %+v", faults)
	}
}

func TestPatternRuleNeedsItsParameter(t *testing.T) {
	d := &patternDetector{th: DefaultThresholds()}
	faults, err := d.detect(&domain.DiagnosticData{
		Signals: map[string]float64{"motor_current": 999},
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(faults) != 0 {
		t.Fatalf("rule without its rated_current parameter must not fire: %+v", faults)
	}
}

func TestPatternStuckSensor(t *testing.T) {
	d := &patternDetector{th: DefaultThresholds()}
	hist := make([]map[string]float64, 10)
	for i := range hist {
		hist[i] = map[string]float64{"level": 42.5, "flow": float64(i)}
	}
	faults, err := d.detect(&domain.DiagnosticData{
		Signals: map[string]float64{"level": 42.5, "flow": 11},
		History: hist,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(faults) != 1 {
		t.Fatalf("expected one stuck-sensor fault, got %+v", faults)
	}
	f := faults[0]
	if f.Category != domain.FaultSensorFailure || f.Severity != domain.SeverityMedium {
		t.Fatalf("stuck sensor = %v/%v", f.Category, f.Severity)
	}
	if f.Evidence[0] != "signal:level" {
		t.Fatalf("evidence = %v", f.Evidence)
	}
}

func TestPatternInsufficientData(t *testing.T) {
	d := &patternDetector{th: DefaultThresholds()}
	_, err := d.detect(&domain.DiagnosticData{})
	var insufficient *domain.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if insufficient.Source != "pattern" {
		t.Fatalf("source = %q", insufficient.Source)
	}
}
