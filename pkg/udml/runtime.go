package udml

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/udmtek/udml-core/internal/adapters/journal"
	"github.com/udmtek/udml-core/internal/adapters/observability"
	"github.com/udmtek/udml-core/internal/adapters/opcua"
	"github.com/udmtek/udml-core/internal/adapters/queue"
	"github.com/udmtek/udml-core/internal/adapters/store"
	"github.com/udmtek/udml-core/internal/app/pipeline"
	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/maintenance"
	"github.com/udmtek/udml-core/internal/ports"
	"github.com/udmtek/udml-core/internal/rca"
)

// MonitorRuntimeOption customizes the dependencies used by MonitorRuntime.
type MonitorRuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	collector     Collector
	journal       Journal
	queue         SnapshotQueue
	store         ReportStore
	observability Observability
	analyzer      FaultAnalyzer
	engine        MaintenancePredictor
	fleet         FleetFunc
}

// WithCollector injects a custom collector implementation (MQTT, Modbus, simulators, etc.).
func WithCollector(col Collector) MonitorRuntimeOption {
	return func(o *runtimeOverrides) {
		o.collector = col
	}
}

// WithJournal lets callers bring their own journal implementation or reuse an existing instance.
func WithJournal(j Journal) MonitorRuntimeOption {
	return func(o *runtimeOverrides) {
		o.journal = j
	}
}

// WithSnapshotQueue injects a custom queue implementation (e.g., lock-free, sharded).
func WithSnapshotQueue(q SnapshotQueue) MonitorRuntimeOption {
	return func(o *runtimeOverrides) {
		o.queue = q
	}
}

// WithReportStore injects a custom store so reports can be sent to any database or API.
func WithReportStore(s ReportStore) MonitorRuntimeOption {
	return func(o *runtimeOverrides) {
		o.store = s
	}
}

// WithObservability plugs in a custom observability backend (OpenTelemetry, structured logs, etc.).
func WithObservability(obs Observability) MonitorRuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithAnalyzer overrides the default root cause analyzer.
func WithAnalyzer(an FaultAnalyzer) MonitorRuntimeOption {
	return func(o *runtimeOverrides) {
		o.analyzer = an
	}
}

// WithMaintenanceEngine overrides the default maintenance predictor.
func WithMaintenanceEngine(eng MaintenancePredictor) MonitorRuntimeOption {
	return func(o *runtimeOverrides) {
		o.engine = eng
	}
}

// WithFleetFunc overrides how equipment statuses are assembled from a snapshot.
func WithFleetFunc(fn FleetFunc) MonitorRuntimeOption {
	return func(o *runtimeOverrides) {
		o.fleet = fn
	}
}

// MonitorRuntime wires up the collector → journal → queue → analysis → store
// pipeline and exposes simple lifecycle hooks for embedding the diagnostics
// core inside any Go service.
type MonitorRuntime struct {
	cfg           *Config
	policy        ports.Policy
	obs           ports.Observability
	journal       ports.Journal
	queue         ports.SnapshotQueue
	collector     ports.SnapshotCollector
	analyzer      FaultAnalyzer
	engine        MaintenancePredictor
	fleet         FleetFunc
	store         ports.ReportStore
	db            *sql.DB
	metricsSrv    *http.Server
	gaugeStopCh   chan struct{}
	analyzeCancel context.CancelFunc
	analyzeDoneCh chan struct{}
}

// NewMonitorRuntime bootstraps the default adapters (OPC UA collector, file
// journal, in-memory queue, Postgres report store, Prometheus observability)
// plus the default analyzer and maintenance engine built from the config
// thresholds. Callers can use MonitorRuntimeOption values to override any
// dependency.
func NewMonitorRuntime(cfg *Config, opts ...MonitorRuntimeOption) (*MonitorRuntime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs()
	}

	var (
		jrn ports.Journal
		err error
	)
	if overrides.journal != nil {
		jrn = overrides.journal
	} else {
		jrn, err = journal.NewFileJournal(cfg.Journal.Dir)
		if err != nil {
			return nil, err
		}
	}
	if jrn == nil {
		return nil, fmt.Errorf("journal adapter is nil")
	}

	q := overrides.queue
	if q == nil {
		q = queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	}
	if q == nil {
		return nil, fmt.Errorf("snapshot queue is nil")
	}

	if err := replayJournalIntoQueue(jrn, q, cfg.Policy, obs); err != nil {
		return nil, err
	}

	col := overrides.collector
	if col == nil {
		col, err = opcua.NewCollector(cfg.OPCUA)
		if err != nil {
			return nil, err
		}
	}
	if col == nil {
		return nil, fmt.Errorf("collector is nil")
	}

	var (
		db *sql.DB
		rs ports.ReportStore
	)
	if overrides.store != nil {
		rs = overrides.store
	} else {
		db, err = sql.Open("postgres", cfg.Postgres.ConnString)
		if err != nil {
			return nil, err
		}
		rs = store.NewPostgresStore(db)
	}
	if rs == nil {
		return nil, fmt.Errorf("report store is nil")
	}

	an := overrides.analyzer
	if an == nil {
		an = rca.NewAnalyzer(cfg.Analysis.Thresholds(), obs)
	}

	eng := overrides.engine
	if eng == nil {
		eng = maintenance.NewEngine(cfg.Maintenance.Params(), obs)
	}

	fleet := overrides.fleet
	if fleet == nil {
		fleet = cfg.FleetFrom
	}

	return &MonitorRuntime{
		cfg:       cfg,
		policy:    cfg.Policy,
		obs:       obs,
		journal:   jrn,
		queue:     q,
		collector: col,
		analyzer:  an,
		engine:    eng,
		fleet:     fleet,
		store:     rs,
		db:        db,
	}, nil
}

// Start begins the monitor + analyze pipelines and launches the observability
// stack. It returns immediately; call Run to block on a context instead.
func (m *MonitorRuntime) Start() error {
	if m == nil {
		return fmt.Errorf("monitor runtime is nil")
	}
	if err := pipeline.RunMonitorPipeline(m.collector, m.journal, m.queue, m.policy, m.obs); err != nil {
		return err
	}

	analyzeCtx, cancel := context.WithCancel(context.Background())
	m.analyzeCancel = cancel
	m.analyzeDoneCh = make(chan struct{})
	go func() {
		pipeline.RunAnalyzePipeline(analyzeCtx, m.journal, m.queue, m.analyzer, m.engine, m.fleet, m.store, m.policy, m.obs)
		close(m.analyzeDoneCh)
	}()

	m.startMetrics()
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown.
func (m *MonitorRuntime) Run(ctx context.Context) error {
	if err := m.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Shutdown(shutdownCtx)
}

// Shutdown stops the collector, analysis loop, metrics server, and DB connection.
func (m *MonitorRuntime) Shutdown(ctx context.Context) error {
	var errs []error

	if m.gaugeStopCh != nil {
		close(m.gaugeStopCh)
	}

	if m.metricsSrv != nil {
		if err := m.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if m.collector != nil {
		if err := m.collector.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.analyzeCancel != nil {
		m.analyzeCancel()
		select {
		case <-m.analyzeDoneCh:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	if m.db != nil {
		if err := m.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (m *MonitorRuntime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	m.metricsSrv = &http.Server{
		Addr:    m.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := m.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()

	m.gaugeStopCh = make(chan struct{})
	go m.recordResourceGauges(m.gaugeStopCh, time.Second)
}

func (m *MonitorRuntime) recordResourceGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := m.journal.Stats()
			m.obs.SetGauge("udml_journal_size_bytes", float64(stats.SizeBytes))
			m.obs.SetGauge("udml_queue_length", float64(m.queue.Len()))
		}
	}
}

func replayJournalIntoQueue(jrn ports.Journal, q ports.SnapshotQueue, pol ports.Policy, obs ports.Observability) error {
	stats := jrn.Stats()
	if stats.LatestAppended == 0 {
		return nil
	}
	start := stats.OldestUnanalyzed
	if start == 0 || start > stats.LatestAppended {
		return nil
	}

	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	var replayed int
	err := jrn.Iterate(start, func(id ports.JournalEntryID, snap *domain.DiagnosticData) error {
		for {
			if q.Enqueue(id, snap) {
				replayed++
				return nil
			}
			switch pol.OnQueueFull {
			case "drop", "reject":
				return fmt.Errorf("queue full during journal replay")
			default:
				time.Sleep(sleep)
			}
		}
	})
	if err != nil {
		return err
	}
	if replayed > 0 {
		obs.LogInfo("journal_replay_complete",
			ports.Field{Key: "snapshots", Value: replayed},
			ports.Field{Key: "from_id", Value: start})
	}
	return nil
}
