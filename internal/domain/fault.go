package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// FaultCategory is the closed set of diagnosable fault classes.
type FaultCategory string

const (
	FaultSensorFailure        FaultCategory = "SENSOR_FAILURE"
	FaultCommunicationTimeout FaultCategory = "COMMUNICATION_TIMEOUT"
	FaultLogicError           FaultCategory = "LOGIC_ERROR"
	FaultMotorOverload        FaultCategory = "MOTOR_OVERLOAD"
	FaultTimingViolation      FaultCategory = "TIMING_VIOLATION"
	FaultSafetyViolation      FaultCategory = "SAFETY_VIOLATION"
)

// Severity is totally ordered: Info < Low < Medium < High < Critical.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "INFO",
	SeverityLow:      "LOW",
	SeverityMedium:   "MEDIUM",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for sev, n := range severityNames {
		if n == name {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", name)
}

// Fault is one ranked root-cause hypothesis. Produced fresh per analysis
// call and never mutated afterwards.
type Fault struct {
	ID          string        `json:"id"`
	Category    FaultCategory `json:"category"`
	Severity    Severity      `json:"severity"`
	Description string        `json:"description"`
	RootCause   string        `json:"root_cause"`
	Actions     []string      `json:"recommended_actions"`
	Confidence  float64       `json:"confidence"`
	Evidence    []string      `json:"evidence,omitempty"`
	DetectedAt  time.Time     `json:"detected_at"`
}
