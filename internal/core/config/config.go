package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "ROLLUP_"

// Config represents the top-level application config.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Rollup   RollupConfig   `koanf:"rollup"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	Type         string `koanf:"type"` // postgres | memory
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
	Fixture      string `koanf:"fixture"` // YAML source rows for the memory type
}

type RollupConfig struct {
	Schemas            []string `koanf:"schemas"`
	Interval           string   `koanf:"interval"`     // scheduler period for serve
	PublishMode        string   `koanf:"publish_mode"` // atomic | split
	WorkerCount        int      `koanf:"worker_count"`
	MaxParallelSchemas int      `koanf:"max_parallel_schemas"`
	AllowEmptySource   bool     `koanf:"allow_empty_source"`
	StatementTimeout   string   `koanf:"statement_timeout"` // per schema run; "0" disables
}

type LogConfig struct {
	Level string `koanf:"level"` // debug | info | warn | error
}

// schemaName restricts tenant schemas to plain Postgres identifiers.
var schemaName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// IntervalDuration returns the parsed scheduler interval. Call after Validate.
func (c RollupConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

// TimeoutDuration returns the parsed per-run timeout; zero means none.
func (c RollupConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.StatementTimeout)
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch c.Database.Type {
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required")
		}
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be > 0")
		}
		if c.Database.MaxIdleConns <= 0 {
			return fmt.Errorf("database.max_idle_conns must be > 0")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database.type %q (must be postgres or memory)", c.Database.Type)
	}

	if len(c.Rollup.Schemas) == 0 {
		return fmt.Errorf("rollup.schemas must name at least one schema")
	}
	seen := make(map[string]bool, len(c.Rollup.Schemas))
	for _, s := range c.Rollup.Schemas {
		if !schemaName.MatchString(s) {
			return fmt.Errorf("invalid rollup.schemas entry %q", s)
		}
		if seen[s] {
			return fmt.Errorf("duplicate rollup.schemas entry %q", s)
		}
		seen[s] = true
	}

	interval, err := time.ParseDuration(c.Rollup.Interval)
	if err != nil {
		return fmt.Errorf("invalid rollup.interval %q: %w", c.Rollup.Interval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("rollup.interval must be > 0")
	}
	if c.Rollup.PublishMode != "atomic" && c.Rollup.PublishMode != "split" {
		return fmt.Errorf("invalid rollup.publish_mode %q (must be atomic or split)", c.Rollup.PublishMode)
	}
	if c.Rollup.WorkerCount <= 0 {
		return fmt.Errorf("rollup.worker_count must be > 0")
	}
	if c.Rollup.MaxParallelSchemas <= 0 {
		return fmt.Errorf("rollup.max_parallel_schemas must be > 0")
	}
	timeout, err := time.ParseDuration(c.Rollup.StatementTimeout)
	if err != nil {
		return fmt.Errorf("invalid rollup.statement_timeout %q: %w", c.Rollup.StatementTimeout, err)
	}
	if timeout < 0 {
		return fmt.Errorf("rollup.statement_timeout must be >= 0")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}

	return nil
}

// Load parses config from defaults, an optional YAML file and ROLLUP_ env vars,
// then validates it. ROLLUP_DATABASE__DSN overrides database.dsn and
// ROLLUP_ROLLUP__SCHEMAS takes a comma-separated list.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                 8080,
		"server.host":                 "0.0.0.0",
		"server.mode":                 "release",
		"database.type":               "postgres",
		"database.dsn":                "",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     25,
		"database.auto_migrate":       true,
		"database.fixture":            "",
		"rollup.schemas":              []string{"public"},
		"rollup.interval":             "1h",
		"rollup.publish_mode":         "atomic",
		"rollup.worker_count":         4,
		"rollup.max_parallel_schemas": 2,
		"rollup.allow_empty_source":   false,
		"rollup.statement_timeout":    "10m",
		"log.level":                   "info",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
