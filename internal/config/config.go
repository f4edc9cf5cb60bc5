package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/sigstore/internal/errors"
	"github.com/vango-dev/sigstore/pkg/demo"
)

const (
	// EnvPrefix prefixes every environment variable read by ApplyEnv.
	EnvPrefix = "SIGDEMO_"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultTickInterval is the default clock tick interval.
	DefaultTickInterval = time.Second

	// DefaultLogBuffer is the default number of log lines the demo keeps.
	DefaultLogBuffer = demo.DefaultLogLimit

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"

	// DefaultInitialName is the name the demo store starts with.
	DefaultInitialName = "Solid"
)

// Config is the complete sigdemo configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" env:"ADDR"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty" env:"LOG_LEVEL"`

	// LogFormat is text or json.
	LogFormat string `json:"logFormat,omitempty" yaml:"logFormat,omitempty" env:"LOG_FORMAT"`

	// TickInterval is how often the demo clock advances.
	TickInterval Duration `json:"tickInterval,omitempty" yaml:"tickInterval,omitempty" env:"TICK_INTERVAL"`

	// LogBuffer bounds the demo's render log.
	LogBuffer int `json:"logBuffer,omitempty" yaml:"logBuffer,omitempty" env:"LOG_BUFFER"`

	// MetricsPath is where Prometheus metrics are served. Empty disables.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty" env:"METRICS_PATH"`

	// InitialName seeds the demo store's name cell.
	InitialName string `json:"initialName,omitempty" yaml:"initialName,omitempty" env:"INITIAL_NAME"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty" env:"SHUTDOWN_TIMEOUT"`

	// Dev enables debug logging of every render and patch.
	Dev bool `json:"dev,omitempty" yaml:"dev,omitempty" env:"DEV"`

	// Tracing configures the OTLP trace exporter.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty" envPrefix:"TRACING_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	// Enabled turns on span export.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty" env:"ENABLED"`

	// Endpoint is the OTLP/HTTP collector host:port.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" env:"ENDPOINT"`

	// Insecure disables TLS to the collector.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty" env:"INSECURE"`

	// ServiceName is reported as service.name.
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" env:"SERVICE_NAME"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Addr:            DefaultAddr,
		LogLevel:        "info",
		LogFormat:       "text",
		TickInterval:    Duration{DefaultTickInterval},
		LogBuffer:       DefaultLogBuffer,
		MetricsPath:     DefaultMetricsPath,
		InitialName:     DefaultInitialName,
		ShutdownTimeout: Duration{10 * time.Second},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4318",
			ServiceName: "sigdemo",
		},
	}
}

// Load builds the configuration from defaults, the file at path (skipped
// when path is empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays the values set in the file at path. The format is
// chosen by extension: .json, .yaml or .yml.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("C002").WithDetail("No config file at " + path)
		}
		return errors.New("C002").Wrap(err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return errors.New("C002").
			WithDetailf("Unsupported config file extension %q", ext)
	}
	if err != nil {
		return errors.New("C002").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	c.configPath = path
	return nil
}

// ApplyEnv overlays SIGDEMO_* variables from environ, or from the process
// environment when environ is nil. Unset variables leave values alone.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New("C001").WithDetail("parse env: " + err.Error())
	}
	return nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("C001").WithDetail(detail)
	}
	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		return invalid("logLevel must be one of debug, info, warn, error; got " + c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return invalid("logFormat must be text or json; got " + c.LogFormat)
	}
	if c.TickInterval.Duration <= 0 {
		return invalid("tickInterval must be positive")
	}
	if c.LogBuffer < 1 {
		return invalid("logBuffer must be at least 1")
	}
	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		return invalid("metricsPath must start with /; got " + c.MetricsPath)
	}
	if c.ShutdownTimeout.Duration < 0 {
		return invalid("shutdownTimeout must not be negative")
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return invalid("tracing.endpoint is required when tracing is enabled")
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level returns the slog level for LogLevel. Dev forces debug.
func (c *Config) Level() slog.Level {
	if c.Dev {
		return slog.LevelDebug
	}
	return levels[strings.ToLower(c.LogLevel)]
}

// Path returns the path the config file was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
