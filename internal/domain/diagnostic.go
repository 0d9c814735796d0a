package domain

import "time"

// AlarmEvent is one timestamped entry from the controller alarm log.
type AlarmEvent struct {
	Code string    `json:"code"`
	At   time.Time `json:"at"`
}

// DiagnosticData is a point-in-time bundle handed to the analyzer by the
// acquisition layer. History holds the bounded window of prior signal
// snapshots, oldest first. Transient; the core never persists it itself.
type DiagnosticData struct {
	Signals    map[string]float64   `json:"signals"`
	History    []map[string]float64 `json:"history,omitempty"`
	ErrorCodes []string             `json:"error_codes,omitempty"`
	Alarms     []AlarmEvent         `json:"alarms,omitempty"`
	Parameters map[string]float64   `json:"parameters,omitempty"`
	CapturedAt time.Time            `json:"captured_at"`
}

// HistoryOf extracts the historical series for one signal, skipping
// snapshots that lack it.
func (d *DiagnosticData) HistoryOf(signal string) []float64 {
	out := make([]float64, 0, len(d.History))
	for _, snap := range d.History {
		if v, ok := snap[signal]; ok {
			out = append(out, v)
		}
	}
	return out
}
