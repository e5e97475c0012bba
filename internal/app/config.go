package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/specialistvlad/cicrender/internal/catalogue"
)

// EnvPrefix prefixes every environment variable read into Config.
const EnvPrefix = "CICRENDER_"

// ErrNoSource is returned when the configuration names neither a snapshot
// nor a reachable catalogue.
var ErrNoSource = errors.New("no configuration source: set --snapshot, --dsn, or --server and --database")

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Catalogue connection.
	Server   string `koanf:"server"`
	Database string `koanf:"database"`
	Driver   string `koanf:"driver"   validate:"oneof=sqlserver sqlite"`
	DSN      string `koanf:"dsn"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Offline source; takes precedence over the catalogue when set.
	Snapshot string `koanf:"snapshot"`

	Out string `koanf:"out" validate:"required"`

	LogFormat string `koanf:"log_format" validate:"oneof=text json"`
	LogLevel  string `koanf:"log_level"  validate:"oneof=debug info warn error"`
	Workers   int    `koanf:"workers"    validate:"min=1,max=64"`
}

// DefaultConfig returns the values used when neither the environment nor
// the command line set a field.
func DefaultConfig() Config {
	return Config{
		Driver:    catalogue.DriverSQLServer,
		LogFormat: "text",
		LogLevel:  "info",
		Workers:   4,
	}
}

// LoadConfig layers defaults, CICRENDER_* environment variables and the
// given overrides (highest precedence, keyed by koanf tag), then validates
// the result.
func LoadConfig(overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return NewConfig(cfg)
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.hasSource() {
		return nil, ErrNoSource
	}
	return &cfg, nil
}

func (c Config) hasSource() bool {
	switch {
	case c.Snapshot != "", c.DSN != "":
		return true
	case c.Driver == catalogue.DriverSQLite:
		return c.Database != ""
	default:
		return c.Server != "" && c.Database != ""
	}
}

// CatalogueOptions returns the connection options for the catalogue store.
func (c *Config) CatalogueOptions() catalogue.Options {
	return catalogue.Options{
		Driver:   c.Driver,
		DSN:      c.DSN,
		Server:   c.Server,
		Database: c.Database,
		User:     c.User,
		Password: c.Password,
	}
}

// LogValue keeps credentials out of the logs.
func (c Config) LogValue() slog.Value {
	redact := func(s string) string {
		if s == "" {
			return ""
		}
		return "REDACTED"
	}
	return slog.GroupValue(
		slog.String("server", c.Server),
		slog.String("database", c.Database),
		slog.String("driver", c.Driver),
		slog.String("dsn", redact(c.DSN)),
		slog.String("user", c.User),
		slog.String("password", redact(c.Password)),
		slog.String("snapshot", c.Snapshot),
		slog.String("out", c.Out),
		slog.String("log_format", c.LogFormat),
		slog.String("log_level", c.LogLevel),
		slog.Int("workers", c.Workers),
	)
}
