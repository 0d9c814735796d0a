package opcua

import (
	"testing"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
)

func testConfig() Config {
	return Config{
		Endpoint: "opc.tcp://localhost:4840",
		Nodes: []NodeConfig{
			{NodeID: "ns=2;s=Line1.Latency", Name: "communication_latency"},
			{NodeID: "ns=2;s=Line1.Errors", Name: "plc_errors", Role: RoleErrorCode},
		},
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.ApplyDefaults()
	if cfg.EmitInterval != time.Second {
		t.Fatalf("emit interval default = %s", cfg.EmitInterval)
	}
	if cfg.HistoryDepth != 60 {
		t.Fatalf("history depth default = %d", cfg.HistoryDepth)
	}
	if cfg.Nodes[0].Role != RoleSignal {
		t.Fatalf("node role default = %q", cfg.Nodes[0].Role)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Endpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("missing endpoint must fail")
	}

	cfg = testConfig()
	cfg.Nodes[0].Role = "gauge"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown role must fail")
	}

	if _, err := NewCollector(Config{Endpoint: "opc.tcp://x"}); err == nil {
		t.Fatalf("collector without nodes must fail")
	}
}

func TestSnapshotRollsHistory(t *testing.T) {
	cfg := testConfig()
	cfg.HistoryDepth = 2
	c, err := NewCollector(cfg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	c.signals["communication_latency"] = 10
	first := c.snapshot()
	if first == nil || len(first.History) != 0 {
		t.Fatalf("first snapshot carries no history, got %+v", first)
	}

	c.signals["communication_latency"] = 12
	second := c.snapshot()
	if len(second.History) != 1 || second.History[0]["communication_latency"] != 10 {
		t.Fatalf("second snapshot history = %+v", second.History)
	}

	c.signals["communication_latency"] = 14
	c.snapshot()
	c.signals["communication_latency"] = 16
	fourth := c.snapshot()
	if len(fourth.History) != 2 {
		t.Fatalf("history must be capped at depth 2, got %d", len(fourth.History))
	}
	if fourth.History[0]["communication_latency"] != 12 || fourth.History[1]["communication_latency"] != 14 {
		t.Fatalf("history window = %+v", fourth.History)
	}
}

func TestSnapshotDrainsCodesAndAlarms(t *testing.T) {
	c, err := NewCollector(testConfig())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.signals["communication_latency"] = 10
	c.codes = []string{"E001"}
	c.alarms = []domain.AlarmEvent{{Code: "ALM_TRIP", At: at}}

	snap := c.snapshot()
	if len(snap.ErrorCodes) != 1 || snap.ErrorCodes[0] != "E001" {
		t.Fatalf("error codes = %v", snap.ErrorCodes)
	}
	if len(snap.Alarms) != 1 || snap.Alarms[0].Code != "ALM_TRIP" {
		t.Fatalf("alarms = %v", snap.Alarms)
	}

	next := c.snapshot()
	if len(next.ErrorCodes) != 0 || len(next.Alarms) != 0 {
		t.Fatalf("codes and alarms must drain, got %+v", next)
	}
}

func TestSnapshotEmptyStateYieldsNothing(t *testing.T) {
	c, err := NewCollector(testConfig())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	if snap := c.snapshot(); snap != nil {
		t.Fatalf("no data yet, got %+v", snap)
	}
}
