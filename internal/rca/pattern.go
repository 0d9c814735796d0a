package rca

import (
	"fmt"
	"sort"

	"github.com/udmtek/udml-core/internal/domain"
)

// patternDetector matches live values and error codes against the static
// rule base, and flags sensors whose history froze.
type patternDetector struct {
	th Thresholds
}

func (d *patternDetector) name() string { return "pattern" }

func (d *patternDetector) detect(data *domain.DiagnosticData) ([]domain.Fault, error) {
	if len(data.ErrorCodes) == 0 && len(data.Signals) == 0 {
		return nil, &domain.InsufficientDataError{Source: d.name(), Field: "signals"}
	}

	var faults []domain.Fault

	for _, code := range data.ErrorCodes {
		rule, ok := errorCodeRules[code]
		if !ok {
			continue
		}
		faults = append(faults, domain.Fault{
			Category:    rule.category,
			Severity:    rule.severity,
			Description: fmt.Sprintf("controller reported error code %s", code),
			RootCause:   rule.rootCause,
			Actions:     rule.actions,
			Confidence:  rule.confidence,
			Evidence:    []string{"error_code:" + code},
		})
	}

	for _, rule := range signalRules {
		v, ok := data.Signals[rule.signal]
		if !ok {
			continue
		}
		limit := rule.threshold
		if rule.param != "" {
			p, ok := data.Parameters[rule.param]
			if !ok {
				continue
			}
			limit = p * rule.factor
		}
		if v <= limit {
			continue
		}
		faults = append(faults, domain.Fault{
			Category:    rule.category,
			Severity:    rule.severity,
			Description: fmt.Sprintf("signal %s at %.2f exceeds limit %.2f", rule.signal, v, limit),
			RootCause:   rule.rootCause,
			Actions:     rule.actions,
			Confidence:  rule.confidence,
			Evidence:    []string{"signal:" + rule.signal},
		})
	}

	faults = append(faults, d.stuckSensors(data)...)
	return faults, nil
}

// stuckSensors flags signals whose whole history window holds one value: a
// live process variable that never moves is a frozen transmitter far more
// often than a perfectly steady process.
func (d *patternDetector) stuckSensors(data *domain.DiagnosticData) []domain.Fault {
	names := make([]string, 0, len(data.Signals))
	for name := range data.Signals {
		names = append(names, name)
	}
	sort.Strings(names)

	var faults []domain.Fault
	for _, name := range names {
		series := data.HistoryOf(name)
		if len(series) < d.th.MinHistory {
			continue
		}
		stuck := true
		for _, v := range series[1:] {
			if v != series[0] {
				stuck = false
				break
			}
		}
		if !stuck || data.Signals[name] != series[0] {
			continue
		}
		faults = append(faults, domain.Fault{
			Category:    domain.FaultSensorFailure,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("signal %s frozen at %.2f across %d snapshots", name, series[0], len(series)),
			RootCause:   "transmitter output stuck, possible wiring or ADC fault",
			Actions:     []string{"force a known input change and observe the reading", "check channel diagnostics"},
			Confidence:  0.7,
			Evidence:    []string{"signal:" + name},
		})
	}
	return faults
}
