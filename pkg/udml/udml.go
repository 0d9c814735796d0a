// Package udml is the embeddable surface of the diagnostics core: vendor
// program decoding and translation into the unified instruction set, root
// cause analysis, maintenance prediction, and the journal-backed monitor
// runtime that ties them together.
package udml

import (
	"context"

	"github.com/udmtek/udml-core/internal/decode"
	"github.com/udmtek/udml-core/internal/maintenance"
	"github.com/udmtek/udml-core/internal/ports"
	"github.com/udmtek/udml-core/internal/rca"
	ir "github.com/udmtek/udml-core/internal/udml"
)

type (
	// Thresholds bounds the root cause detectors.
	Thresholds = rca.Thresholds
	// MaintenanceParams bounds the recommendation triggers.
	MaintenanceParams = maintenance.Params
	// ScheduleConstraints caps the optimizer's budget and downtime.
	ScheduleConstraints = maintenance.Constraints
)

// DefaultThresholds returns the detector bounds used when no config overrides them.
func DefaultThresholds() Thresholds { return rca.DefaultThresholds() }

// DefaultMaintenanceParams returns the trigger bounds used when no config overrides them.
func DefaultMaintenanceParams() MaintenanceParams { return maintenance.DefaultParams() }

// DecodeProgram turns a vendor project blob into normalized instruction blocks.
func DecodeProgram(vendor Vendor, raw []byte, model string) ([]Block, error) {
	d, err := decode.ForVendor(vendor)
	if err != nil {
		return nil, err
	}
	return d.Decode(raw, model)
}

// Translate maps decoded vendor blocks onto the unified opcode set.
func Translate(vendor Vendor, blocks []Block) (*Program, error) {
	return defaultTranslator.Translate(vendor, blocks)
}

// TranslateSource is DecodeProgram followed by Translate.
func TranslateSource(vendor Vendor, raw []byte, model string) (*Program, error) {
	blocks, err := DecodeProgram(vendor, raw, model)
	if err != nil {
		return nil, err
	}
	return Translate(vendor, blocks)
}

// OptimizeProgram returns a semantics-preserving optimized copy of p.
func OptimizeProgram(p *Program) *Program {
	return ir.Optimize(p)
}

// AnalyzeComplexity computes per-block and program-wide control flow metrics.
func AnalyzeComplexity(p *Program) ComplexityReport {
	return ir.Analyze(p)
}

// MarshalProgram encodes p into the versioned interchange document.
func MarshalProgram(p *Program) ([]byte, error) {
	return ir.Marshal(p)
}

// UnmarshalProgram decodes and validates a versioned interchange document.
func UnmarshalProgram(data []byte) (*Program, error) {
	return ir.Unmarshal(data)
}

// AnalyzeFaults runs the full detector set against one snapshot and returns
// the deduplicated, ranked faults. For pipelined use with metrics, prefer
// MonitorRuntime.
func AnalyzeFaults(ctx context.Context, snap *Snapshot, th Thresholds) ([]Fault, error) {
	return rca.NewAnalyzer(th, nopObs{}).Analyze(ctx, snap)
}

// PredictMaintenance turns a fleet of equipment statuses into ordered
// maintenance recommendations.
func PredictMaintenance(fleet []EquipmentStatus, params MaintenanceParams) ([]MaintenanceRecommendation, error) {
	return maintenance.NewEngine(params, nopObs{}).Predict(fleet)
}

// OptimizeSchedule greedily packs recommendations into a schedule under the
// given budget and downtime ceilings.
func OptimizeSchedule(recs []MaintenanceRecommendation, c ScheduleConstraints) Schedule {
	return maintenance.OptimizeSchedule(recs, c)
}

var defaultTranslator = ir.NewTranslator()

// nopObs backs the synchronous entry points, which have no pipeline to meter.
type nopObs struct{}

func (nopObs) LogInfo(string, ...ports.Field)            {}
func (nopObs) LogError(string, error, ...ports.Field)    {}
func (nopObs) LogCritical(string, error, ...ports.Field) {}
func (nopObs) IncCounter(string, float64)                {}
func (nopObs) ObserveLatency(string, float64)            {}
func (nopObs) SetGauge(string, float64)                  {}
func (nopObs) RecordSkipped(string, error)               {}

var _ ports.Observability = nopObs{}
