package models

import "time"

// -----------------------------------------------------------------------------
// Configuration Structs (populated from YAML, see src/config)
// -----------------------------------------------------------------------------

// MConfig is the root application configuration.
type MConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`

	// BaseAddress is the REST collaborator base URL. The push stream URL is
	// derived from it by scheme translation (https -> wss). Overridable via
	// the OPS_API_BASE environment variable.
	BaseAddress string `yaml:"base_address"`

	HTTPPort int    `yaml:"http_port"` // metrics endpoint
	GRPCHost string `yaml:"grpc_host"`
	GRPCPort int    `yaml:"grpc_port"`

	Universe []*MUniverseEntry `yaml:"universe"`
	Engine   MEngineConfig     `yaml:"engine"`
	Failover MFailoverConfig   `yaml:"failover"`
	NATS     MNATSConfig       `yaml:"nats"`
}

// -----------------------------------------------------------------------------

// MUniverseEntry seeds one instrument of the fixed universe.
type MUniverseEntry struct {
	Symbol    string      `yaml:"symbol"`
	Last      float64     `yaml:"last"`
	ChangePct float64     `yaml:"chg_pct"`
	Score     int         `yaml:"score"`
	VolMa     float64     `yaml:"vol_ma"`
	Signal    MSignal     `yaml:"signal"`
	Asset     MAssetClass `yaml:"asset"`
	Sector    string      `yaml:"sector"`
	Volume    float64     `yaml:"volume"`
}

// -----------------------------------------------------------------------------

// MEngineConfig tunes buffer depths and decay behavior.
type MEngineConfig struct {
	HistoryDepth      int     `yaml:"history_depth"`      // price history per instrument
	ChartWindow       int     `yaml:"chart_window"`       // focus chart slice
	CorrelationWindow int     `yaml:"correlation_window"` // samples per correlation leg
	AnomalyRing       int     `yaml:"anomaly_ring"`       // retained anomalies
	TickDecay         float64 `yaml:"tick_decay"`         // breadth counter decay per render tick
}

// -----------------------------------------------------------------------------

// MFailoverConfig tunes source failover and polling cadence.
type MFailoverConfig struct {
	ReconnectBackoffMS int `yaml:"reconnect_backoff_ms"` // push retry backoff
	SimTickMS          int `yaml:"sim_tick_ms"`          // simulation walk interval
	PollIntervalMS     int `yaml:"poll_interval_ms"`     // market pull fallback
	ClockIntervalMS    int `yaml:"clock_interval_ms"`    // market-open clock poll
	RequestTimeoutMS   int `yaml:"request_timeout_ms"`   // REST call bound
}

// ReconnectBackoff returns the push reconnect backoff as a duration.
func (c *MFailoverConfig) ReconnectBackoff() time.Duration {
	return time.Duration(c.ReconnectBackoffMS) * time.Millisecond
}

// SimTick returns the simulation tick interval as a duration.
func (c *MFailoverConfig) SimTick() time.Duration {
	return time.Duration(c.SimTickMS) * time.Millisecond
}

// PollInterval returns the market poll interval as a duration.
func (c *MFailoverConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// ClockInterval returns the clock poll interval as a duration.
func (c *MFailoverConfig) ClockInterval() time.Duration {
	return time.Duration(c.ClockIntervalMS) * time.Millisecond
}

// RequestTimeout returns the REST request bound as a duration.
func (c *MFailoverConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// -----------------------------------------------------------------------------

// MNATSConfig configures the NATS publisher. Disabled when Servers is empty.
type MNATSConfig struct {
	Servers       []string `yaml:"servers"`
	ClientID      string   `yaml:"client_id"`
	SubjectPrefix string   `yaml:"subject_prefix"`
	UseJetStream  bool     `yaml:"use_jetstream"`
}
