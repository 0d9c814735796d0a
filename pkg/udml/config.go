package udml

import (
	"github.com/udmtek/udml-core/internal/adapters/opcua"
	"github.com/udmtek/udml-core/internal/app/config"
	"github.com/udmtek/udml-core/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls journal/queue thresholds.
	Policy = ports.Policy
	// OPCUAConfig holds connection + node details.
	OPCUAConfig = opcua.Config
	// OPCUANodeConfig describes a monitored tag and the role it plays in a snapshot.
	OPCUANodeConfig = opcua.NodeConfig
	// PostgresConfig configures the report store.
	PostgresConfig = config.PostgresConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// JournalConfig configures on-disk durability.
	JournalConfig = config.JournalConfig
	// AnalysisConfig bounds the root cause detectors.
	AnalysisConfig = config.AnalysisConfig
	// MaintenanceConfig bounds the recommendation triggers.
	MaintenanceConfig = config.MaintenanceConfig
	// EquipmentConfig maps snapshot signals onto one unit's status.
	EquipmentConfig = config.EquipmentConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
