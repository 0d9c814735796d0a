package rca

import (
	"fmt"
	"sort"

	"github.com/udmtek/udml-core/internal/domain"
)

// sequenceDetector inspects the alarm log for orderings the process should
// never produce: followers without their precursor, and alarm floods.
type sequenceDetector struct {
	th Thresholds
}

func (d *sequenceDetector) name() string { return "sequence" }

const (
	repeatWindow    = 10
	repeatThreshold = 4
)

func (d *sequenceDetector) detect(data *domain.DiagnosticData) ([]domain.Fault, error) {
	if len(data.Alarms) == 0 {
		return nil, &domain.InsufficientDataError{Source: d.name(), Field: "alarms"}
	}

	var faults []domain.Fault
	faults = append(faults, d.missingPrecursors(data.Alarms)...)
	faults = append(faults, d.repeatedAlarms(data.Alarms)...)
	return faults, nil
}

func (d *sequenceDetector) missingPrecursors(alarms []domain.AlarmEvent) []domain.Fault {
	var faults []domain.Fault
	for i, ev := range alarms {
		rule, ok := precursorFor(ev.Code)
		if !ok {
			continue
		}
		found := false
		for j := i - 1; j >= 0; j-- {
			prev := alarms[j]
			if ev.At.Sub(prev.At) > d.th.PrecursorWindow {
				break
			}
			if prev.Code == rule.precursor {
				found = true
				break
			}
		}
		if found {
			continue
		}
		faults = append(faults, domain.Fault{
			Category: domain.FaultLogicError,
			Severity: domain.SeverityMedium,
			Description: fmt.Sprintf("alarm %s fired without precursor %s within %s",
				ev.Code, rule.precursor, d.th.PrecursorWindow),
			RootCause:  "interlock sequence skipped an expected stage",
			Actions:    []string{"review the step chain for bypassed transitions", "check forced bits"},
			Confidence: 0.65,
			Evidence:   []string{"alarm:" + ev.Code},
		})
	}
	return faults
}

// repeatedAlarms flags any code occupying repeatThreshold or more slots of
// the last repeatWindow alarm entries.
func (d *sequenceDetector) repeatedAlarms(alarms []domain.AlarmEvent) []domain.Fault {
	start := 0
	if len(alarms) > repeatWindow {
		start = len(alarms) - repeatWindow
	}
	counts := map[string]int{}
	for _, ev := range alarms[start:] {
		counts[ev.Code]++
	}

	codes := make([]string, 0, len(counts))
	for code, n := range counts {
		if n >= repeatThreshold {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	var faults []domain.Fault
	for _, code := range codes {
		category := domain.FaultLogicError
		if rule, ok := errorCodeRules[code]; ok {
			category = rule.category
		}
		faults = append(faults, domain.Fault{
			Category: category,
			Severity: domain.SeverityMedium,
			Description: fmt.Sprintf("alarm %s repeated %d times in the last %d events",
				code, counts[code], repeatWindow),
			RootCause:  "chattering condition, bouncing input or marginal threshold",
			Actions:    []string{"add hysteresis or debounce to the triggering condition"},
			Confidence: 0.6,
			Evidence:   []string{"alarm:" + code},
		})
	}
	return faults
}

func precursorFor(code string) (precursorRule, bool) {
	for _, rule := range precursorRules {
		if rule.alarm == code {
			return rule, true
		}
	}
	return precursorRule{}, false
}
