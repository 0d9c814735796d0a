package rca

import (
	"strings"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
)

// Thresholds bounds the statistical detectors. Loaded once from config and
// treated as read-only afterwards.
type Thresholds struct {
	// AnomalySigma is the deviation, in standard deviations, beyond which a
	// signal is flagged.
	AnomalySigma float64
	// MinHistory is the minimum number of historical snapshots a signal
	// needs before the statistical detectors consider it.
	MinHistory int
	// CorrelationMin is the historical |Pearson r| above which a signal
	// pair is treated as coupled.
	CorrelationMin float64
	// PrecursorWindow is how far back a precursor alarm may fire and still
	// count as preceding its follower.
	PrecursorWindow time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		AnomalySigma:    3.0,
		MinHistory:      10,
		CorrelationMin:  0.7,
		PrecursorWindow: time.Minute,
	}
}

// codeRule maps one controller error/warning code to a fault hypothesis.
type codeRule struct {
	category   domain.FaultCategory
	severity   domain.Severity
	rootCause  string
	actions    []string
	confidence float64
}

var errorCodeRules = map[string]codeRule{
	"E001": {
		category:   domain.FaultCommunicationTimeout,
		severity:   domain.SeverityCritical,
		rootCause:  "fieldbus watchdog expired, remote station unreachable",
		actions:    []string{"check bus cabling and terminators", "inspect switch port counters", "verify remote station power"},
		confidence: 0.9,
	},
	"E002": {
		category:   domain.FaultSensorFailure,
		severity:   domain.SeverityHigh,
		rootCause:  "analog input out of electrical range",
		actions:    []string{"check sensor wiring", "verify transmitter supply voltage", "replace sensor if drift persists"},
		confidence: 0.85,
	},
	"E003": {
		category:   domain.FaultMotorOverload,
		severity:   domain.SeverityHigh,
		rootCause:  "thermal overload relay tripped",
		actions:    []string{"check mechanical load for jam", "measure phase currents", "allow cool-down before reset"},
		confidence: 0.85,
	},
	"W001": {
		category:   domain.FaultSensorFailure,
		severity:   domain.SeverityLow,
		rootCause:  "buffer battery below minimum voltage",
		actions:    []string{"replace backup battery at next service window"},
		confidence: 0.6,
	},
}

// signalRule fires when a live signal crosses a threshold. When param is set
// the threshold is read from DiagnosticData.Parameters and scaled by factor;
// otherwise the fixed threshold applies.
type signalRule struct {
	signal     string
	param      string
	factor     float64
	threshold  float64
	category   domain.FaultCategory
	severity   domain.Severity
	rootCause  string
	actions    []string
	confidence float64
}

var signalRules = []signalRule{
	{
		signal:     "emergency_stop",
		threshold:  0.5,
		category:   domain.FaultSafetyViolation,
		severity:   domain.SeverityCritical,
		rootCause:  "emergency stop circuit open",
		actions:    []string{"inspect all e-stop stations", "clear the hazard before reset"},
		confidence: 0.99,
	},
	{
		signal:     "motor_current",
		param:      "rated_current",
		factor:     1.2,
		category:   domain.FaultMotorOverload,
		severity:   domain.SeverityHigh,
		rootCause:  "drive current sustained above rated limit",
		actions:    []string{"check load coupling", "verify gearbox lubrication"},
		confidence: 0.8,
	},
	{
		signal:     "scan_time_ms",
		param:      "max_scan_time_ms",
		factor:     1.0,
		category:   domain.FaultTimingViolation,
		severity:   domain.SeverityMedium,
		rootCause:  "program scan exceeded the configured cycle budget",
		actions:    []string{"profile interrupt OBs", "move heavy computation to a background task"},
		confidence: 0.75,
	},
	{
		signal:     "comm_retries",
		threshold:  3,
		category:   domain.FaultCommunicationTimeout,
		severity:   domain.SeverityMedium,
		rootCause:  "repeated telegram retries on the fieldbus",
		actions:    []string{"check for duplicate station addresses", "inspect cable shielding"},
		confidence: 0.7,
	},
}

// precursorRule states that an alarm is only expected after its precursor
// fired within the window.
type precursorRule struct {
	alarm     string
	precursor string
}

var precursorRules = []precursorRule{
	{alarm: "ALM_TRIP", precursor: "ALM_WARN"},
	{alarm: "ALM_ESTOP", precursor: "ALM_GUARD_OPEN"},
	{alarm: "ALM_OVERTEMP", precursor: "ALM_TEMP_HIGH"},
}

// signalPair couples two signals that historically move together; a break
// in the coupling points at the given category.
type signalPair struct {
	a, b     string
	category domain.FaultCategory
}

var correlatedPairs = []signalPair{
	{a: "motor_current", b: "motor_temperature", category: domain.FaultMotorOverload},
	{a: "pump_speed", b: "flow_rate", category: domain.FaultSensorFailure},
	{a: "load", b: "temperature", category: domain.FaultMotorOverload},
}

// categoryForSignal classifies an anomalous signal by its name.
func categoryForSignal(name string) domain.FaultCategory {
	switch {
	case containsAny(name, "latency", "response", "timeout"):
		return domain.FaultCommunicationTimeout
	case containsAny(name, "current", "temperature"):
		return domain.FaultMotorOverload
	case containsAny(name, "scan_time", "cycle"):
		return domain.FaultTimingViolation
	default:
		return domain.FaultLogicError
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
