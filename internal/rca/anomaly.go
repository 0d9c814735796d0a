package rca

import (
	"fmt"
	"math"
	"sort"

	"github.com/udmtek/udml-core/internal/domain"
)

// anomalyDetector flags signals whose current value deviates from the
// historical window by more than AnomalySigma standard deviations.
type anomalyDetector struct {
	th Thresholds
}

func (d *anomalyDetector) name() string { return "anomaly" }

func (d *anomalyDetector) detect(data *domain.DiagnosticData) ([]domain.Fault, error) {
	names := make([]string, 0, len(data.Signals))
	for name := range data.Signals {
		names = append(names, name)
	}
	sort.Strings(names)

	var faults []domain.Fault
	usable := false
	for _, name := range names {
		series := data.HistoryOf(name)
		if len(series) < d.th.MinHistory {
			continue
		}
		usable = true

		mean, std := meanStddev(series)
		if std == 0 {
			// Flat history is the pattern detector's stuck-sensor case.
			continue
		}
		z := math.Abs(data.Signals[name]-mean) / std
		if z <= d.th.AnomalySigma {
			continue
		}

		sev := domain.SeverityHigh
		if z > 5 {
			sev = domain.SeverityCritical
		}
		faults = append(faults, domain.Fault{
			Category: categoryForSignal(name),
			Severity: sev,
			Description: fmt.Sprintf("signal %s at %.2f deviates %.1f sigma from mean %.2f",
				name, data.Signals[name], z, mean),
			RootCause:  fmt.Sprintf("statistical anomaly on %s beyond %.1f sigma", name, d.th.AnomalySigma),
			Actions:    []string{"compare against redundant measurements", "review recent process changes"},
			Confidence: confidenceForZ(z, d.th.AnomalySigma),
			Evidence:   []string{"signal:" + name},
		})
	}
	if !usable {
		return nil, &domain.InsufficientDataError{Source: d.name(), Field: "history"}
	}
	return faults, nil
}

// confidenceForZ grows with the deviation and saturates at 0.95.
func confidenceForZ(z, sigma float64) float64 {
	c := 0.6 + 0.1*(z-sigma)
	if c > 0.95 {
		return 0.95
	}
	return c
}

func meanStddev(series []float64) (mean, std float64) {
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))
	var sum float64
	for _, v := range series {
		d := v - mean
		sum += d * d
	}
	return mean, math.Sqrt(sum / float64(len(series)))
}
