package udml

import (
	"github.com/udmtek/udml-core/internal/app/pipeline"
	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

// Snapshot is the data structure that flows through the journal→queue→analysis
// pipeline. It mirrors internal/domain.DiagnosticData but is exported so
// custom adapters can reference it.
type Snapshot = domain.DiagnosticData

// AlarmEvent is one timestamped entry from the controller alarm log.
type AlarmEvent = domain.AlarmEvent

// QueuedSnapshot represents an item buffered inside the bounded queue.
type QueuedSnapshot = ports.QueuedSnapshot

// Collector streams diagnostic snapshots from any data source (OPC UA, Modbus,
// MQTT, etc.) into the pipeline.
type Collector = ports.SnapshotCollector

// SnapshotQueue is the bounded, in-memory queue that decouples acquisition
// from analysis.
type SnapshotQueue = ports.SnapshotQueue

// ReportStore persists faults and maintenance recommendations downstream.
type ReportStore = ports.ReportStore

// Observability emits metrics/logs about throughput, latency, and skipped
// detectors.
type Observability = ports.Observability

// Field is a structured log/metric field used by Observability implementations.
type Field = ports.Field

// Journal abstracts the snapshot log used for durability and crash recovery.
type Journal = ports.Journal

// JournalStats exposes journal metadata for observability.
type JournalStats = ports.JournalStats

// JournalEntryID uniquely identifies a journal entry.
type JournalEntryID = ports.JournalEntryID

// FaultAnalyzer is the analysis contract the pipeline drives.
type FaultAnalyzer = pipeline.FaultAnalyzer

// MaintenancePredictor turns equipment statuses into recommendations.
type MaintenancePredictor = pipeline.MaintenancePredictor

// FleetFunc maps a snapshot onto the equipment statuses it carries.
type FleetFunc = pipeline.FleetFunc

// Analysis result and program types, re-exported for callers of the
// synchronous API.
type (
	Fault                     = domain.Fault
	FaultCategory             = domain.FaultCategory
	Severity                  = domain.Severity
	EquipmentStatus           = domain.EquipmentStatus
	EquipmentType             = domain.EquipmentType
	MaintenanceRecommendation = domain.MaintenanceRecommendation
	MaintenanceKind           = domain.MaintenanceKind
	Schedule                  = domain.Schedule
	ScheduleEntry             = domain.ScheduleEntry
	Vendor                    = domain.Vendor
	Block                     = domain.Block
	Instruction               = domain.Instruction
	Program                   = domain.Program
	ComplexityReport          = domain.ComplexityReport
)
