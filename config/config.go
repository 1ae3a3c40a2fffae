// Package config loads and validates the listen/dial endpoints, timeouts,
// and retry policy for each protocol role, following the layered
// loader/SafeConfig pattern semstreams uses for its own configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OwlPlatform/owl-common/errors"
	"github.com/OwlPlatform/owl-common/pkg/retry"
)

// Config is the complete process configuration: one block per protocol
// role plus the ambient retry and metrics settings shared by all of them.
type Config struct {
	SensorAggregator AggregatorFaceConfig `yaml:"sensor_aggregator"`
	AggregatorSolver SolverFaceConfig     `yaml:"aggregator_solver"`
	WorldModel       WorldModelConfig     `yaml:"world_model"`
	Retry            RetryConfig          `yaml:"retry"`
	Metrics          MetricsConfig        `yaml:"metrics"`
}

// AggregatorFaceConfig configures the sensor-facing side of an aggregator.
type AggregatorFaceConfig struct {
	ListenAddress   string        `yaml:"listen_address"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

// SolverFaceConfig configures an aggregator's outbound connection to a
// solver, or a solver's inbound listener, depending on process role.
type SolverFaceConfig struct {
	ListenAddress string `yaml:"listen_address,omitempty"`
	DialAddress   string `yaml:"dial_address,omitempty"`
}

// WorldModelConfig configures a world model's two listening faces.
type WorldModelConfig struct {
	ClientListenAddress string `yaml:"client_listen_address"`
	SolverListenAddress string `yaml:"solver_listen_address"`
}

// RetryConfig mirrors pkg/retry.Config in a YAML-friendly shape. A
// non-empty Preset selects retry.Quick()/retry.Persistent() and the
// explicit fields are then ignored; with no preset, a zero MaxAttempts
// selects retry.DefaultConfig().
type RetryConfig struct {
	Preset       string        `yaml:"preset,omitempty"` // "quick", "persistent", or "" for explicit fields
	MaxAttempts  int           `yaml:"max_attempts,omitempty"`
	InitialDelay time.Duration `yaml:"initial_delay,omitempty"`
	MaxDelay     time.Duration `yaml:"max_delay,omitempty"`
	Multiplier   float64       `yaml:"multiplier,omitempty"`
}

// Resolve converts a RetryConfig into a pkg/retry.Config.
func (r RetryConfig) Resolve() retry.Config {
	switch strings.ToLower(r.Preset) {
	case "quick":
		return retry.Quick()
	case "persistent":
		return retry.Persistent()
	}
	if r.MaxAttempts == 0 {
		return retry.DefaultConfig()
	}
	return retry.Config{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: r.InitialDelay,
		MaxDelay:     r.MaxDelay,
		Multiplier:   r.Multiplier,
		AddJitter:    true,
	}
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Port int    `yaml:"port,omitempty"`
	Path string `yaml:"path,omitempty"`
}

// Validate checks required fields and normalizes defaults.
func (c *Config) Validate() error {
	if c.SensorAggregator.ListenAddress == "" && c.AggregatorSolver.DialAddress == "" &&
		c.WorldModel.ClientListenAddress == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "at least one protocol role must be configured")
	}
	if c.SensorAggregator.ListenAddress != "" && c.SensorAggregator.HandshakeTimeout <= 0 {
		c.SensorAggregator.HandshakeTimeout = 5 * time.Second
	}
	if c.Retry.Multiplier < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "retry.multiplier must be non-negative")
	}
	return nil
}

// SafeConfig provides thread-safe, atomic-swap access to a Config,
// mirroring semstreams' config.SafeConfig: readers take a snapshot under
// a read lock, writers validate before swapping the pointer.
type SafeConfig struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewSafeConfig wraps cfg (or a zero Config if nil) for concurrent access.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{cfg: cfg}
}

// Get returns the current configuration. The returned pointer must be
// treated as read-only by the caller; Update always swaps in a new one.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.cfg
}

// Update validates cfg and, on success, atomically replaces the current
// configuration.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "SafeConfig", "Update", "config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cfg = cfg
	return nil
}

// Loader loads and merges YAML configuration layers plus environment
// overrides, in the order layers were added, following semstreams'
// config.Loader pattern trimmed to this module's smaller surface.
type Loader struct {
	layers    []string
	envPrefix string
}

// NewLoader returns a Loader that applies OWL_-prefixed environment
// overrides after all file layers.
func NewLoader() *Loader {
	return &Loader{envPrefix: "OWL"}
}

// AddLayer appends a YAML file path to be merged, in order, over the
// built-in defaults.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// Load reads all layers, applies environment overrides, validates, and
// returns the resulting Config.
func (l *Loader) Load() (*Config, error) {
	cfg := l.defaults()

	for _, path := range l.layers {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", "read layer "+path)
		}
		var layer Config
		if err := yaml.Unmarshal(data, &layer); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", "parse layer "+path)
		}
		cfg = mergeNonZero(cfg, &layer)
	}

	l.applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) defaults() *Config {
	return &Config{
		SensorAggregator: AggregatorFaceConfig{
			HandshakeTimeout: 5 * time.Second,
		},
		Retry: RetryConfig{
			Preset: "quick",
		},
		Metrics: MetricsConfig{
			Port: 9090,
			Path: "/metrics",
		},
	}
}

// mergeNonZero overlays every non-zero field of override onto base,
// returning base. Because Config holds only scalars and value structs
// (no pointers), a field-by-field overlay is simpler and safer here
// than semstreams' JSON-roundtrip map merge.
func mergeNonZero(base, override *Config) *Config {
	if override.SensorAggregator.ListenAddress != "" {
		base.SensorAggregator.ListenAddress = override.SensorAggregator.ListenAddress
	}
	if override.SensorAggregator.HandshakeTimeout != 0 {
		base.SensorAggregator.HandshakeTimeout = override.SensorAggregator.HandshakeTimeout
	}
	if override.AggregatorSolver.ListenAddress != "" {
		base.AggregatorSolver.ListenAddress = override.AggregatorSolver.ListenAddress
	}
	if override.AggregatorSolver.DialAddress != "" {
		base.AggregatorSolver.DialAddress = override.AggregatorSolver.DialAddress
	}
	if override.WorldModel.ClientListenAddress != "" {
		base.WorldModel.ClientListenAddress = override.WorldModel.ClientListenAddress
	}
	if override.WorldModel.SolverListenAddress != "" {
		base.WorldModel.SolverListenAddress = override.WorldModel.SolverListenAddress
	}
	if override.Retry.Preset != "" {
		base.Retry.Preset = override.Retry.Preset
	}
	if override.Retry.MaxAttempts != 0 {
		base.Retry = override.Retry
	}
	if override.Metrics.Port != 0 {
		base.Metrics.Port = override.Metrics.Port
	}
	if override.Metrics.Path != "" {
		base.Metrics.Path = override.Metrics.Path
	}
	return base
}

func (l *Loader) applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(l.envPrefix + "_SENSOR_LISTEN"); v != "" {
		cfg.SensorAggregator.ListenAddress = v
	}
	if v := os.Getenv(l.envPrefix + "_SOLVER_DIAL"); v != "" {
		cfg.AggregatorSolver.DialAddress = v
	}
	if v := os.Getenv(l.envPrefix + "_WORLDMODEL_CLIENT_LISTEN"); v != "" {
		cfg.WorldModel.ClientListenAddress = v
	}
	if v := os.Getenv(l.envPrefix + "_WORLDMODEL_SOLVER_LISTEN"); v != "" {
		cfg.WorldModel.SolverListenAddress = v
	}
}

// String renders the configuration as YAML, for logging.
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<config marshal error: %v>", err)
	}
	return string(data)
}
