package udmlcore

import (
	"context"

	base "github.com/udmtek/udml-core/pkg/udml"
)

// Re-exported errors for convenience.
var (
	ErrQueueFull          = base.ErrQueueFull
	ErrJournalFull        = base.ErrJournalFull
	ErrChannelStoreClosed = base.ErrChannelStoreClosed
)

// Type aliases so consumers can import github.com/udmtek/udml-core directly.
type (
	Config                    = base.Config
	Policy                    = base.Policy
	OPCUAConfig               = base.OPCUAConfig
	OPCUANodeConfig           = base.OPCUANodeConfig
	PostgresConfig            = base.PostgresConfig
	MetricsConfig             = base.MetricsConfig
	JournalConfig             = base.JournalConfig
	AnalysisConfig            = base.AnalysisConfig
	MaintenanceConfig         = base.MaintenanceConfig
	EquipmentConfig           = base.EquipmentConfig
	Flow                      = base.Flow
	FlowOption                = base.FlowOption
	StreamInOption            = base.StreamInOption
	StreamOutOption           = base.StreamOutOption
	MonitorRuntime            = base.MonitorRuntime
	MonitorRuntimeOption      = base.MonitorRuntimeOption
	Snapshot                  = base.Snapshot
	AlarmEvent                = base.AlarmEvent
	SnapshotBatchFunc         = base.SnapshotBatchFunc
	FaultBatchFunc            = base.FaultBatchFunc
	RecommendationBatchFunc   = base.RecommendationBatchFunc
	Report                    = base.Report
	Collector                 = base.Collector
	ReportStore               = base.ReportStore
	SnapshotQueue             = base.SnapshotQueue
	Journal                   = base.Journal
	Observability             = base.Observability
	QueuedSnapshot            = base.QueuedSnapshot
	JournalEntryID            = base.JournalEntryID
	JournalStats              = base.JournalStats
	FaultAnalyzer             = base.FaultAnalyzer
	MaintenancePredictor      = base.MaintenancePredictor
	FleetFunc                 = base.FleetFunc
	SnapshotPublisher         = base.SnapshotPublisher
	SnapshotPublisherConfig   = base.SnapshotPublisherConfig
	Vendor                    = base.Vendor
	Block                     = base.Block
	Instruction               = base.Instruction
	Program                   = base.Program
	ComplexityReport          = base.ComplexityReport
	Fault                     = base.Fault
	FaultCategory             = base.FaultCategory
	Severity                  = base.Severity
	EquipmentStatus           = base.EquipmentStatus
	EquipmentType             = base.EquipmentType
	MaintenanceRecommendation = base.MaintenanceRecommendation
	MaintenanceKind           = base.MaintenanceKind
	Schedule                  = base.Schedule
	ScheduleEntry             = base.ScheduleEntry
	Thresholds                = base.Thresholds
	MaintenanceParams         = base.MaintenanceParams
	ScheduleConstraints       = base.ScheduleConstraints
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...MonitorRuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInCollector(col Collector) StreamInOption {
	return base.StreamInCollector(col)
}

func StreamInQueue(q SnapshotQueue) StreamInOption {
	return base.StreamInQueue(q)
}

func StreamInJournal(j Journal) StreamInOption {
	return base.StreamInJournal(j)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutStore(s ReportStore) StreamOutOption {
	return base.StreamOutStore(s)
}

func StreamOutAnalyzer(an FaultAnalyzer) StreamOutOption {
	return base.StreamOutAnalyzer(an)
}

func StreamOutMaintenanceEngine(eng MaintenancePredictor) StreamOutOption {
	return base.StreamOutMaintenanceEngine(eng)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(name string, onFaults FaultBatchFunc, onRecs RecommendationBatchFunc) StreamOutOption {
	return base.StreamOutCallback(name, onFaults, onRecs)
}

// Monitor runtime and options.
func NewMonitorRuntime(cfg *Config, opts ...MonitorRuntimeOption) (*MonitorRuntime, error) {
	return base.NewMonitorRuntime(cfg, opts...)
}

func WithCollector(col Collector) MonitorRuntimeOption {
	return base.WithCollector(col)
}

func WithReportStore(s ReportStore) MonitorRuntimeOption {
	return base.WithReportStore(s)
}

func WithJournal(j Journal) MonitorRuntimeOption {
	return base.WithJournal(j)
}

func WithSnapshotQueue(q SnapshotQueue) MonitorRuntimeOption {
	return base.WithSnapshotQueue(q)
}

func WithObservability(obs Observability) MonitorRuntimeOption {
	return base.WithObservability(obs)
}

func WithAnalyzer(an FaultAnalyzer) MonitorRuntimeOption {
	return base.WithAnalyzer(an)
}

func WithMaintenanceEngine(eng MaintenancePredictor) MonitorRuntimeOption {
	return base.WithMaintenanceEngine(eng)
}

func WithFleetFunc(fn FleetFunc) MonitorRuntimeOption {
	return base.WithFleetFunc(fn)
}

// Report sinks.
func NewCallbackStore(name string, onFaults FaultBatchFunc, onRecs RecommendationBatchFunc) ReportStore {
	return base.NewCallbackStore(name, onFaults, onRecs)
}

func NewChannelStore(name string, buffer int) (ReportStore, <-chan Report, func()) {
	return base.NewChannelStore(name, buffer)
}

// Snapshot publisher.
func NewSnapshotPublisher(cfg *SnapshotPublisherConfig, sink SnapshotBatchFunc) (*SnapshotPublisher, error) {
	return base.NewSnapshotPublisher(cfg, sink)
}

// Program toolchain.
func DecodeProgram(vendor Vendor, raw []byte, model string) ([]Block, error) {
	return base.DecodeProgram(vendor, raw, model)
}

func Translate(vendor Vendor, blocks []Block) (*Program, error) {
	return base.Translate(vendor, blocks)
}

func TranslateSource(vendor Vendor, raw []byte, model string) (*Program, error) {
	return base.TranslateSource(vendor, raw, model)
}

func OptimizeProgram(p *Program) *Program {
	return base.OptimizeProgram(p)
}

func AnalyzeComplexity(p *Program) ComplexityReport {
	return base.AnalyzeComplexity(p)
}

func MarshalProgram(p *Program) ([]byte, error) {
	return base.MarshalProgram(p)
}

func UnmarshalProgram(data []byte) (*Program, error) {
	return base.UnmarshalProgram(data)
}

// Synchronous analysis.
func AnalyzeFaults(ctx context.Context, snap *Snapshot, th Thresholds) ([]Fault, error) {
	return base.AnalyzeFaults(ctx, snap, th)
}

func PredictMaintenance(fleet []EquipmentStatus, params MaintenanceParams) ([]MaintenanceRecommendation, error) {
	return base.PredictMaintenance(fleet, params)
}

func OptimizeSchedule(recs []MaintenanceRecommendation, c ScheduleConstraints) Schedule {
	return base.OptimizeSchedule(recs, c)
}

func DefaultThresholds() Thresholds {
	return base.DefaultThresholds()
}

func DefaultMaintenanceParams() MaintenanceParams {
	return base.DefaultMaintenanceParams()
}
