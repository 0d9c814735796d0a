package opcua

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"

	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

// NodeRole states how a monitored node contributes to a snapshot.
const (
	RoleSignal    = "signal"     // numeric value copied into Signals
	RoleErrorCode = "error_code" // string value appended to ErrorCodes on change
	RoleAlarm     = "alarm"      // string value appended to Alarms on change
	RoleParameter = "parameter"  // numeric setpoint copied into Parameters
)

// Config captures the runtime details required to open an OPC UA session.
type Config struct {
	Endpoint         string        `yaml:"endpoint"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	SecurityMode     string        `yaml:"security_mode"`
	SecurityPolicy   string        `yaml:"security_policy"`
	ApplicationName  string        `yaml:"application_name"`
	PublishInterval  time.Duration `yaml:"publish_interval"`
	SamplingInterval time.Duration `yaml:"sampling_interval"`
	// EmitInterval is how often the collector materializes a snapshot from
	// the latest node values.
	EmitInterval time.Duration `yaml:"emit_interval"`
	// HistoryDepth is the number of prior snapshots carried in
	// DiagnosticData.History, oldest first.
	HistoryDepth int          `yaml:"history_depth"`
	Nodes        []NodeConfig `yaml:"nodes"`
}

// NodeConfig defines a monitored tag/node.
type NodeConfig struct {
	NodeID string `yaml:"node_id"`
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
}

func (c *Config) ApplyDefaults() {
	if c.SecurityMode == "" {
		c.SecurityMode = "None"
	}
	if c.SecurityPolicy == "" {
		c.SecurityPolicy = "None"
	}
	if c.ApplicationName == "" {
		c.ApplicationName = "UDML Edge"
	}
	if c.PublishInterval <= 0 {
		c.PublishInterval = 250 * time.Millisecond
	}
	if c.SamplingInterval < 0 {
		c.SamplingInterval = 0
	}
	if c.EmitInterval <= 0 {
		c.EmitInterval = time.Second
	}
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = 60
	}
	for i := range c.Nodes {
		if c.Nodes[i].Name == "" {
			c.Nodes[i].Name = c.Nodes[i].NodeID
		}
		if c.Nodes[i].Role == "" {
			c.Nodes[i].Role = RoleSignal
		}
	}
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if len(c.Nodes) == 0 {
		return errors.New("at least one node must be configured")
	}
	for _, n := range c.Nodes {
		switch n.Role {
		case RoleSignal, RoleErrorCode, RoleAlarm, RoleParameter:
		default:
			return fmt.Errorf("node %q: unknown role %q", n.NodeID, n.Role)
		}
	}
	return nil
}

// Collector subscribes to the configured nodes and emits DiagnosticData
// snapshots on EmitInterval, carrying a rolling history window plus the
// error codes and alarm events observed since the previous snapshot.
type Collector struct {
	cfg       Config
	client    *opcua.Client
	sub       *opcua.Subscription
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	handleMap map[uint32]NodeConfig
	started   bool

	mu         sync.Mutex
	signals    map[string]float64
	parameters map[string]float64
	codes      []string
	alarms     []domain.AlarmEvent
	history    []map[string]float64
}

func NewCollector(cfg Config) (*Collector, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Collector{
		cfg:        cfg,
		signals:    make(map[string]float64),
		parameters: make(map[string]float64),
	}, nil
}

func (c *Collector) Start(out chan<- *domain.DiagnosticData) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("opcua collector already started")
	}
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	clientOpts := c.buildClientOptions()

	client, err := opcua.NewClient(c.cfg.Endpoint, clientOpts...)
	if err != nil {
		cancel()
		return fmt.Errorf("opcua new client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		cancel()
		return fmt.Errorf("opcua connect: %w", err)
	}

	notifyCh := make(chan *opcua.PublishNotificationData, len(c.cfg.Nodes)*4)
	sub, err := client.Subscribe(ctx, &opcua.SubscriptionParameters{
		Interval: c.cfg.PublishInterval,
	}, notifyCh)
	if err != nil {
		cancel()
		_ = client.Close(ctx)
		return fmt.Errorf("opcua subscribe: %w", err)
	}

	handleMap := make(map[uint32]NodeConfig, len(c.cfg.Nodes))
	for i, node := range c.cfg.Nodes {
		nodeID, err := ua.ParseNodeID(node.NodeID)
		if err != nil {
			c.cleanupOnError(ctx, cancel, sub, client)
			return fmt.Errorf("parse node id %q: %w", node.NodeID, err)
		}
		handle := uint32(i + 1)
		req := opcua.NewMonitoredItemCreateRequestWithDefaults(nodeID, ua.AttributeIDValue, handle)
		if c.cfg.SamplingInterval > 0 {
			req.RequestedParameters.SamplingInterval = float64(c.cfg.SamplingInterval / time.Millisecond)
		}
		res, err := sub.Monitor(ctx, ua.TimestampsToReturnBoth, req)
		if err != nil {
			c.cleanupOnError(ctx, cancel, sub, client)
			return fmt.Errorf("monitor node %q: %w", node.NodeID, err)
		}
		if len(res.Results) == 0 {
			c.cleanupOnError(ctx, cancel, sub, client)
			return fmt.Errorf("monitor node %q failed: empty result", node.NodeID)
		}
		if res.Results[0].StatusCode != ua.StatusOK {
			c.cleanupOnError(ctx, cancel, sub, client)
			return fmt.Errorf("monitor node %q failed: %s", node.NodeID, res.Results[0].StatusCode)
		}
		handleMap[handle] = node
	}

	c.mu.Lock()
	c.client = client
	c.sub = sub
	c.cancel = cancel
	c.handleMap = handleMap
	c.started = true
	c.mu.Unlock()

	c.wg.Add(2)
	go c.consume(ctx, notifyCh)
	go c.emit(ctx, out)
	return nil
}

func (c *Collector) Stop() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	cancel := c.cancel
	sub := c.sub
	client := c.client
	c.started = false
	c.cancel = nil
	c.sub = nil
	c.client = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()

	var err error
	if sub != nil {
		if e := sub.Cancel(ctx); e != nil && !errors.Is(e, context.Canceled) {
			err = errors.Join(err, e)
		}
	}
	if client != nil {
		if e := client.Close(ctx); e != nil && !errors.Is(e, context.Canceled) {
			err = errors.Join(err, e)
		}
	}

	c.wg.Wait()
	return err
}

func (c *Collector) consume(ctx context.Context, ch <-chan *opcua.PublishNotificationData) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case notif := <-ch:
			if notif == nil {
				continue
			}
			if notif.Error != nil {
				log.Printf("opcua: notification error: %v", notif.Error)
				continue
			}
			c.processNotification(notif.Value)
		}
	}
}

func (c *Collector) processNotification(val interface{}) {
	data, ok := val.(*ua.DataChangeNotification)
	if !ok {
		return
	}

	for _, item := range data.MonitoredItems {
		nodeCfg, ok := c.handleMap[item.ClientHandle]
		if !ok {
			continue
		}

		ts := item.Value.ServerTimestamp
		if ts.IsZero() {
			ts = item.Value.SourceTimestamp
		}
		if ts.IsZero() {
			ts = time.Now().UTC()
		}

		switch nodeCfg.Role {
		case RoleSignal, RoleParameter:
			fv, ok := variantToFloat(item.Value.Value)
			if !ok {
				log.Printf("opcua: skipping node %s due to unsupported type %T", nodeCfg.NodeID, item.Value.Value)
				continue
			}
			c.mu.Lock()
			if nodeCfg.Role == RoleSignal {
				c.signals[nodeCfg.Name] = fv
			} else {
				c.parameters[nodeCfg.Name] = fv
			}
			c.mu.Unlock()
		case RoleErrorCode, RoleAlarm:
			sv, ok := variantToString(item.Value.Value)
			if !ok || sv == "" {
				continue
			}
			c.mu.Lock()
			if nodeCfg.Role == RoleErrorCode {
				c.codes = append(c.codes, sv)
			} else {
				c.alarms = append(c.alarms, domain.AlarmEvent{Code: sv, At: ts})
			}
			c.mu.Unlock()
		}
	}
}

// emit materializes a snapshot every EmitInterval from the latest node
// values, draining the accumulated codes and alarms.
func (c *Collector) emit(ctx context.Context, out chan<- *domain.DiagnosticData) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.EmitInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := c.snapshot()
			if snap == nil {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- snap:
			}
		}
	}
}

func (c *Collector) snapshot() *domain.DiagnosticData {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.signals) == 0 && len(c.codes) == 0 && len(c.alarms) == 0 {
		return nil
	}

	signals := make(map[string]float64, len(c.signals))
	for k, v := range c.signals {
		signals[k] = v
	}
	parameters := make(map[string]float64, len(c.parameters))
	for k, v := range c.parameters {
		parameters[k] = v
	}

	history := make([]map[string]float64, len(c.history))
	copy(history, c.history)

	snap := &domain.DiagnosticData{
		Signals:    signals,
		History:    history,
		ErrorCodes: c.codes,
		Alarms:     c.alarms,
		Parameters: parameters,
		CapturedAt: time.Now().UTC(),
	}
	c.codes = nil
	c.alarms = nil

	// Roll the window: the snapshot just taken becomes history for the next.
	c.history = append(c.history, signals)
	if len(c.history) > c.cfg.HistoryDepth {
		c.history = c.history[len(c.history)-c.cfg.HistoryDepth:]
	}
	return snap
}

func (c *Collector) buildClientOptions() []opcua.Option {
	opts := []opcua.Option{
		opcua.SecurityModeString(normalizeSecurityMode(c.cfg.SecurityMode)),
		opcua.SecurityPolicy(normalizeSecurityPolicy(c.cfg.SecurityPolicy)),
		opcua.ApplicationName(c.cfg.ApplicationName),
		opcua.AutoReconnect(true),
	}

	if c.cfg.Username != "" {
		opts = append(opts, opcua.AuthUsername(c.cfg.Username, c.cfg.Password))
	} else {
		opts = append(opts, opcua.AuthAnonymous())
	}

	return opts
}

func (c *Collector) cleanupOnError(ctx context.Context, cancel context.CancelFunc, sub *opcua.Subscription, client *opcua.Client) {
	cancel()
	if sub != nil {
		_ = sub.Cancel(ctx)
	}
	if client != nil {
		_ = client.Close(ctx)
	}
}

func variantToFloat(v *ua.Variant) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.Value().(type) {
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case int8:
		return float64(val), true
	case uint8:
		return float64(val), true
	case int16:
		return float64(val), true
	case uint16:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

func variantToString(v *ua.Variant) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.Value().(string)
	return s, ok
}

func normalizeSecurityMode(mode string) string {
	switch strings.ToLower(mode) {
	case "sign":
		return "Sign"
	case "signandencrypt", "signencrypt", "sign_and_encrypt", "sign+encrypt":
		return "SignAndEncrypt"
	default:
		return "None"
	}
}

func normalizeSecurityPolicy(policy string) string {
	if policy == "" {
		return "None"
	}
	return policy
}

var _ ports.SnapshotCollector = (*Collector)(nil)
