package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/medstore/medstore/pkg/stores"
	"github.com/medstore/medstore/pkg/telemetry"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given explicitly.
const DefaultPath = "medstore.yaml"

// DefaultDatabasePath is the database file, relative to the working directory.
const DefaultDatabasePath = "medications.db"

// Config is the top-level medstore configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	// Path is the SQLite file, or ":memory:".
	Path string `yaml:"path" validate:"required"`

	MaxOpenConns    int           `yaml:"max_open_conns,omitempty" validate:"gte=0"`
	MaxIdleConns    int           `yaml:"max_idle_conns,omitempty" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty" validate:"gte=0"`
	BusyTimeout     time.Duration `yaml:"busy_timeout,omitempty" validate:"gte=0"`
}

// TelemetryConfig configures logging, tracing and metrics.
type TelemetryConfig struct {
	LogLevel  string `yaml:"log_level" validate:"oneof=trace debug info warn error fatal"`
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`
	LogOutput string `yaml:"log_output" validate:"required"`

	TraceExporter     string  `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	TraceEndpoint     string  `yaml:"trace_endpoint,omitempty" validate:"required_if=TraceExporter otlp"`
	TraceSamplingRate float64 `yaml:"trace_sampling_rate" validate:"gte=0,lte=1"`

	// MetricsListen is the address long-running commands serve /metrics on.
	// Empty disables the endpoint.
	MetricsListen string `yaml:"metrics_listen,omitempty" validate:"omitempty,hostname_port"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        DefaultDatabasePath,
			BusyTimeout: 5 * time.Second,
		},
		Telemetry: TelemetryConfig{
			LogLevel:          "info",
			LogFormat:         "console",
			LogOutput:         "stderr",
			TraceExporter:     "none",
			TraceSamplingRate: 1.0,
		},
	}
}

// Load reads the config file at path over the defaults, applies environment
// overrides and validates the result. An empty path loads DefaultPath if
// it exists and the defaults otherwise. A path given explicitly must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		return load(DefaultPath, false)
	}
	return load(path, true)
}

// LoadOptional is like Load but falls back to the defaults when the file
// at path does not exist.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	return load(path, false)
}

func load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("MEDSTORE_DB_PATH"); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Telemetry.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("MEDSTORE_TRACE_EXPORTER"); ok && v != "" {
		c.Telemetry.TraceExporter = v
	}
	if v, ok := lookup("MEDSTORE_TRACE_ENDPOINT"); ok && v != "" {
		c.Telemetry.TraceEndpoint = v
	}
	if v, ok := lookup("MEDSTORE_METRICS_LISTEN"); ok {
		c.Telemetry.MetricsListen = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// StoreConfig converts the database section into a stores.Config.
func (c *Config) StoreConfig() stores.Config {
	return stores.Config{
		Path:            c.Database.Path,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		BusyTimeout:     c.Database.BusyTimeout,
	}
}

// TelemetryConfig converts the telemetry section into a telemetry.Config.
func (c *Config) TelemetryConfig(version string) *telemetry.Config {
	tc := telemetry.DefaultConfig()
	if version != "" {
		tc.ServiceVersion = version
	}

	tc.Logging.Level = c.Telemetry.LogLevel
	tc.Logging.Format = c.Telemetry.LogFormat
	tc.Logging.Output = c.Telemetry.LogOutput

	tc.Tracing.Enabled = c.Telemetry.TraceExporter != "none"
	tc.Tracing.Exporter = c.Telemetry.TraceExporter
	tc.Tracing.Endpoint = c.Telemetry.TraceEndpoint
	tc.Tracing.SamplingRate = c.Telemetry.TraceSamplingRate

	tc.Metrics.ListenAddress = c.Telemetry.MetricsListen

	return tc
}

// Encode renders the configuration as YAML.
func (c *Config) Encode() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// WriteFile writes the configuration to path, refusing to overwrite an
// existing file.
func (c *Config) WriteFile(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
