package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromObsMetrics(t *testing.T) {
	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	obs := NewPromObs()

	obs.IncCounter("udml_snapshots_analyzed_total", 5)
	if got := testutil.ToFloat64(obs.counters["udml_snapshots_analyzed_total"]); got != 5 {
		t.Fatalf("expected analyzed counter 5, got %f", got)
	}

	obs.IncCounter("udml_snapshots_dropped_total", 2)
	if got := testutil.ToFloat64(obs.counters["udml_snapshots_dropped_total"]); got != 2 {
		t.Fatalf("expected dropped counter 2, got %f", got)
	}

	obs.SetGauge("udml_journal_size_bytes", 42)
	if got := testutil.ToFloat64(obs.gauges["udml_journal_size_bytes"]); got != 42 {
		t.Fatalf("expected journal gauge 42, got %f", got)
	}

	obs.ObserveLatency("udml_analysis_latency_seconds", 0.5)
	hCollector := obs.histos["udml_analysis_latency_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	obs.RecordSkipped("anomaly", errors.New("history too short"))
	if got := testutil.ToFloat64(obs.counters["udml_detectors_skipped_total"]); got != 1 {
		t.Fatalf("expected skipped counter 1, got %f", got)
	}

	// Unknown names are ignored rather than panicking.
	obs.IncCounter("udml_unknown_total", 1)
	obs.SetGauge("udml_unknown_gauge", 1)
	obs.ObserveLatency("udml_unknown_seconds", 1)
}
