package observability

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/udmtek/udml-core/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	analyzed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "udml_snapshots_analyzed_total",
		Help: "Total diagnostic snapshots run through the analysis pass.",
	})
	faults := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "udml_faults_detected_total",
		Help: "Total faults produced by root cause analysis.",
	})
	recommendations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "udml_recommendations_total",
		Help: "Total maintenance recommendations produced.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "udml_detectors_skipped_total",
		Help: "Detector passes skipped because the snapshot lacked their inputs.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "udml_snapshots_dropped_total",
		Help: "Snapshots lost to journal/queue backpressure policies.",
	})
	journalGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "udml_journal_size_bytes",
		Help: "Size of the snapshot journal on disk.",
	})
	queueGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "udml_queue_length",
		Help: "Current number of snapshots buffered in the in-memory queue.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "udml_analysis_latency_seconds",
		Help:    "Latency from dequeued snapshot to stored analysis report.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	prometheus.MustRegister(analyzed, faults, recommendations, skipped, dropped, journalGauge, queueGauge, latency)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"udml_snapshots_analyzed_total": analyzed,
			"udml_faults_detected_total":    faults,
			"udml_recommendations_total":    recommendations,
			"udml_detectors_skipped_total":  skipped,
			"udml_snapshots_dropped_total":  dropped,
		},
		gauges: map[string]prometheus.Gauge{
			"udml_journal_size_bytes": journalGauge,
			"udml_queue_length":       queueGauge,
		},
		histos: map[string]prometheus.Observer{
			"udml_analysis_latency_seconds": latency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v", msg, err)
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v", msg, err)
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordSkipped(source string, err error) {
	p.IncCounter("udml_detectors_skipped_total", 1)
	if err != nil {
		log.Printf("skipped %s: %v", source, err)
	}
}

var _ ports.Observability = (*PromObs)(nil)
