// Package config loads quizflow settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/abhisek/quizflow/internal/flow"
	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/store"
)

// Config holds everything the CLI and the HTTP server read from the
// environment. Command-line flags override individual fields.
type Config struct {
	DB   DBConfig
	HTTP HTTPConfig
	Log  LogConfig
	Flow FlowConfig
}

// DBConfig selects the store backend.
type DBConfig struct {
	Driver string `envconfig:"QUIZFLOW_DB_DRIVER" default:"sqlite"` // sqlite or postgres
	DSN    string `envconfig:"QUIZFLOW_DB_DSN"`                     // empty means the default sqlite file
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr        string        `envconfig:"QUIZFLOW_HTTP_ADDR" default:":8080"`
	CORSOrigins []string      `envconfig:"QUIZFLOW_CORS_ORIGINS" default:"*"`
	SessionTTL  time.Duration `envconfig:"QUIZFLOW_SESSION_TTL" default:"30m"` // idle sessions are evicted after this
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `envconfig:"QUIZFLOW_LOG_LEVEL" default:"info"`
	Encoding   string `envconfig:"QUIZFLOW_LOG_ENCODING" default:"json"`
	OutputPath string `envconfig:"QUIZFLOW_LOG_OUTPUT"`
}

// FlowConfig holds the engine policies.
type FlowConfig struct {
	MultiSelectPolicy string `envconfig:"QUIZFLOW_MULTI_SELECT_POLICY" default:"single"`
	CyclePolicy       string `envconfig:"QUIZFLOW_CYCLE_POLICY" default:"allow"`
}

// Load reads the configuration from environment variables and checks the
// values that have a closed set of options.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("QUIZFLOW_DB_DRIVER: unsupported driver %q (want sqlite or postgres)", c.DB.Driver)
	}
	if c.DB.Driver == store.DriverPostgres && c.DB.DSN == "" {
		return fmt.Errorf("QUIZFLOW_DB_DSN is required for the postgres driver")
	}
	if _, err := flow.ParseMultiSelectPolicy(c.Flow.MultiSelectPolicy); err != nil {
		return fmt.Errorf("QUIZFLOW_MULTI_SELECT_POLICY: %w", err)
	}
	if _, err := quiz.ParseCyclePolicy(c.Flow.CyclePolicy); err != nil {
		return fmt.Errorf("QUIZFLOW_CYCLE_POLICY: %w", err)
	}
	if c.HTTP.SessionTTL <= 0 {
		return fmt.Errorf("QUIZFLOW_SESSION_TTL must be positive, got %s", c.HTTP.SessionTTL)
	}
	return nil
}

// Resolver returns the flow resolver configured by the multi-select policy.
// Call Validate first; an unknown policy falls back to the default.
func (c *Config) Resolver() flow.Resolver {
	p, _ := flow.ParseMultiSelectPolicy(c.Flow.MultiSelectPolicy)
	return flow.Resolver{MultiSelect: p}
}

// ValidateOptions returns the options every quiz write is validated with.
func (c *Config) ValidateOptions() []quiz.ValidateOption {
	p, _ := quiz.ParseCyclePolicy(c.Flow.CyclePolicy)
	return []quiz.ValidateOption{quiz.WithCyclePolicy(p)}
}

// OpenStore connects to the configured database. For sqlite with no DSN the
// default database path is used.
func (c *Config) OpenStore() (*store.Store, error) {
	dsn := c.DB.DSN
	if c.DB.Driver == store.DriverSQLite {
		if dsn == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, err
			}
			dsn = p
		} else if err := store.EnsureDir(dsn); err != nil {
			return nil, err
		}
	}
	return store.Connect(c.DB.Driver, dsn)
}
