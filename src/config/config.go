package config

import (
	"fmt"
	"os"

	"market-eye/src/models"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// envOverrides are applied on top of the YAML file. OPS_API_BASE is the
// documented deployment override for the REST/stream base address.
type envOverrides struct {
	BaseAddress string   `env:"OPS_API_BASE"`
	LogLevel    string   `env:"OPS_LOG_LEVEL"`
	NATSServers []string `env:"OPS_NATS_SERVERS" envSeparator:","`
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file, applies
// environment overrides and defaults, and validates the result.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Environment overrides, then defaults for anything still unset
	if err := config.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	config.applyDefaults()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// DefaultConfig returns a fully defaulted configuration with no backend
// address: the engine starts in simulation against the seed universe.
func DefaultConfig() *Config {
	config := &Config{MConfig: &models.MConfig{Name: "market-eye"}}
	config.applyDefaults()
	return config
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnvOverrides() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return err
	}
	if overrides.BaseAddress != "" {
		c.BaseAddress = overrides.BaseAddress
	}
	if overrides.LogLevel != "" {
		c.LogLevel = overrides.LogLevel
	}
	if len(overrides.NATSServers) > 0 {
		c.NATS.Servers = overrides.NATSServers
	}
	return nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills every unset tuning knob with the engine's canonical
// values and seeds the default universe when none is configured.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Engine.HistoryDepth <= 0 {
		c.Engine.HistoryDepth = 120
	}
	if c.Engine.ChartWindow <= 0 {
		c.Engine.ChartWindow = 80
	}
	if c.Engine.CorrelationWindow <= 0 {
		c.Engine.CorrelationWindow = 20
	}
	if c.Engine.AnomalyRing <= 0 {
		c.Engine.AnomalyRing = 20
	}
	if c.Engine.TickDecay <= 0 {
		c.Engine.TickDecay = 0.05
	}
	if c.Failover.ReconnectBackoffMS <= 0 {
		c.Failover.ReconnectBackoffMS = 5000
	}
	if c.Failover.SimTickMS <= 0 {
		c.Failover.SimTickMS = 1200
	}
	if c.Failover.PollIntervalMS <= 0 {
		c.Failover.PollIntervalMS = 6000
	}
	if c.Failover.ClockIntervalMS <= 0 {
		c.Failover.ClockIntervalMS = 12000
	}
	if c.Failover.RequestTimeoutMS <= 0 {
		c.Failover.RequestTimeoutMS = 3500
	}
	if c.NATS.ClientID == "" {
		c.NATS.ClientID = c.Name
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "market"
	}
	if len(c.Universe) == 0 {
		c.Universe = DefaultUniverse()
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation and checks the universe
// and port sub-configs.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config name cannot be empty")
	}

	// Ports are optional; when set they must be unprivileged and valid.
	if c.HTTPPort != 0 && (c.HTTPPort <= 1024 || c.HTTPPort > 65535) {
		return fmt.Errorf("invalid http port number: %d (must be between 1025 and 65535)", c.HTTPPort)
	}
	if c.GRPCPort != 0 && (c.GRPCPort <= 1024 || c.GRPCPort > 65535) {
		return fmt.Errorf("invalid gRPC port number: %d (must be between 1025 and 65535)", c.GRPCPort)
	}

	// Validate the instrument universe
	if len(c.Universe) == 0 {
		return fmt.Errorf("instrument universe cannot be empty")
	}
	seen := make(map[string]bool, len(c.Universe))
	for i, entry := range c.Universe {
		if entry.Symbol == "" {
			return fmt.Errorf("universe entry %d: symbol cannot be empty", i)
		}
		if seen[entry.Symbol] {
			return fmt.Errorf("universe entry %d: duplicate symbol '%s'", i, entry.Symbol)
		}
		seen[entry.Symbol] = true
		if entry.Last < 0 {
			return fmt.Errorf("universe entry '%s': seed price cannot be negative", entry.Symbol)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// GetUniverseEntry returns a single universe entry by symbol.
func (c *Config) GetUniverseEntry(symbol string) *models.MUniverseEntry {
	for _, entry := range c.Universe {
		if entry.Symbol == symbol {
			return entry
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// HasBackend reports whether a REST/stream base address is configured.
func (c *Config) HasBackend() bool {
	return c.BaseAddress != ""
}
