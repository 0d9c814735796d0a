package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udmtek/udml-core/internal/adapters/opcua"
	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/maintenance"
	"github.com/udmtek/udml-core/internal/ports"
	"github.com/udmtek/udml-core/internal/rca"
)

type Config struct {
	Policy      ports.Policy      `yaml:"policy"`
	OPCUA       opcua.Config      `yaml:"opcua"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Journal     JournalConfig     `yaml:"journal"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Equipment   []EquipmentConfig `yaml:"equipment"`
}

type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type JournalConfig struct {
	Dir string `yaml:"dir"`
}

// AnalysisConfig bounds the root cause detectors.
type AnalysisConfig struct {
	AnomalySigma    float64       `yaml:"anomaly_sigma"`
	MinHistory      int           `yaml:"min_history"`
	CorrelationMin  float64       `yaml:"correlation_min"`
	PrecursorWindow time.Duration `yaml:"precursor_window"`
}

// Thresholds converts the section into the analyzer's parameter struct.
func (a AnalysisConfig) Thresholds() rca.Thresholds {
	return rca.Thresholds{
		AnomalySigma:    a.AnomalySigma,
		MinHistory:      a.MinHistory,
		CorrelationMin:  a.CorrelationMin,
		PrecursorWindow: a.PrecursorWindow,
	}
}

// MaintenanceConfig bounds the recommendation triggers and the scheduler.
type MaintenanceConfig struct {
	HealthWarn       float64       `yaml:"health_warn"`
	HealthCritical   float64       `yaml:"health_critical"`
	ServiceInterval  time.Duration `yaml:"service_interval"`
	VibrationLimit   float64       `yaml:"vibration_limit"`
	TemperatureLimit float64       `yaml:"temperature_limit"`
	CurrentFactor    float64       `yaml:"current_factor"`
	Budget           float64       `yaml:"budget"`
	MaxDowntime      time.Duration `yaml:"max_downtime"`
}

// Params converts the section into the engine's parameter struct.
func (m MaintenanceConfig) Params() maintenance.Params {
	return maintenance.Params{
		HealthWarn:       m.HealthWarn,
		HealthCritical:   m.HealthCritical,
		ServiceInterval:  m.ServiceInterval,
		VibrationLimit:   m.VibrationLimit,
		TemperatureLimit: m.TemperatureLimit,
		CurrentFactor:    m.CurrentFactor,
	}
}

// EquipmentConfig declares how a unit's status is assembled from snapshot
// signals: which signal carries its health score, hours, cycles, and which
// signals feed each model reading.
type EquipmentConfig struct {
	ID           string            `yaml:"id"`
	Type         string            `yaml:"type"`
	HealthSignal string            `yaml:"health_signal"`
	HoursSignal  string            `yaml:"hours_signal"`
	CyclesSignal string            `yaml:"cycles_signal"`
	LastServiced time.Time         `yaml:"last_serviced"`
	Readings     map[string]string `yaml:"readings"`
}

// StatusFrom assembles the unit's EquipmentStatus from one snapshot.
// Returns false when the health signal is absent from the snapshot.
func (e *EquipmentConfig) StatusFrom(snap *domain.DiagnosticData) (domain.EquipmentStatus, bool) {
	health, ok := snap.Signals[e.HealthSignal]
	if !ok {
		return domain.EquipmentStatus{}, false
	}
	status := domain.EquipmentStatus{
		EquipmentID:    e.ID,
		Type:           domain.EquipmentType(e.Type),
		HealthScore:    health,
		LastServicedAt: e.LastServiced,
	}
	if e.HoursSignal != "" {
		status.OperatingHours = snap.Signals[e.HoursSignal]
	}
	if e.CyclesSignal != "" {
		status.Cycles = int64(snap.Signals[e.CyclesSignal])
	}
	if len(e.Readings) > 0 {
		status.Readings = make(map[string]float64, len(e.Readings))
		for reading, signal := range e.Readings {
			if v, ok := snap.Signals[signal]; ok {
				status.Readings[reading] = v
			}
		}
	}
	return status, true
}

// FleetFrom assembles the statuses of every configured unit whose health
// signal is present in the snapshot.
func (c *Config) FleetFrom(snap *domain.DiagnosticData) []domain.EquipmentStatus {
	var fleet []domain.EquipmentStatus
	for i := range c.Equipment {
		if status, ok := c.Equipment[i].StatusFrom(snap); ok {
			fleet = append(fleet, status)
		}
	}
	return fleet
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Policy.MaxJournalSizeBytes == 0 {
		c.Policy.MaxJournalSizeBytes = 10 << 30
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 100_000
	}
	if c.Policy.MaxBatchSize == 0 {
		c.Policy.MaxBatchSize = 5_000
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
	if c.Policy.OnJournalFull == "" {
		c.Policy.OnJournalFull = "block"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "./data/journal"
	}

	th := rca.DefaultThresholds()
	if c.Analysis.AnomalySigma == 0 {
		c.Analysis.AnomalySigma = th.AnomalySigma
	}
	if c.Analysis.MinHistory == 0 {
		c.Analysis.MinHistory = th.MinHistory
	}
	if c.Analysis.CorrelationMin == 0 {
		c.Analysis.CorrelationMin = th.CorrelationMin
	}
	if c.Analysis.PrecursorWindow == 0 {
		c.Analysis.PrecursorWindow = th.PrecursorWindow
	}

	params := maintenance.DefaultParams()
	if c.Maintenance.HealthWarn == 0 {
		c.Maintenance.HealthWarn = params.HealthWarn
	}
	if c.Maintenance.HealthCritical == 0 {
		c.Maintenance.HealthCritical = params.HealthCritical
	}
	if c.Maintenance.ServiceInterval == 0 {
		c.Maintenance.ServiceInterval = params.ServiceInterval
	}
	if c.Maintenance.VibrationLimit == 0 {
		c.Maintenance.VibrationLimit = params.VibrationLimit
	}
	if c.Maintenance.TemperatureLimit == 0 {
		c.Maintenance.TemperatureLimit = params.TemperatureLimit
	}
	if c.Maintenance.CurrentFactor == 0 {
		c.Maintenance.CurrentFactor = params.CurrentFactor
	}

	c.OPCUA.ApplyDefaults()
}

func (c *Config) validate() error {
	if err := c.OPCUA.Validate(); err != nil {
		return fmt.Errorf("opcua config: %w", err)
	}
	if c.Postgres.ConnString == "" {
		return fmt.Errorf("postgres.conn_string is required")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	if c.Journal.Dir == "" {
		return fmt.Errorf("journal.dir is required")
	}
	if c.Analysis.AnomalySigma <= 0 {
		return fmt.Errorf("analysis.anomaly_sigma must be positive")
	}
	if c.Analysis.MinHistory < 2 {
		return fmt.Errorf("analysis.min_history must be at least 2")
	}
	for i, e := range c.Equipment {
		if e.ID == "" {
			return fmt.Errorf("equipment[%d]: id is required", i)
		}
		if e.Type == "" {
			return fmt.Errorf("equipment %q: type is required", e.ID)
		}
		if e.HealthSignal == "" {
			return fmt.Errorf("equipment %q: health_signal is required", e.ID)
		}
	}
	return nil
}
