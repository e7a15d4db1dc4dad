package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizflow/internal/flow"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.HTTP.SessionTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Encoding)
	assert.Equal(t, flow.BranchOnSingleSelection, cfg.Resolver().MultiSelect)
	assert.Len(t, cfg.ValidateOptions(), 1)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("QUIZFLOW_DB_DRIVER", "postgres")
	t.Setenv("QUIZFLOW_DB_DSN", "postgres://localhost/quizflow")
	t.Setenv("QUIZFLOW_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("QUIZFLOW_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("QUIZFLOW_SESSION_TTL", "5m")
	t.Setenv("QUIZFLOW_LOG_LEVEL", "debug")
	t.Setenv("QUIZFLOW_MULTI_SELECT_POLICY", "first-match")
	t.Setenv("QUIZFLOW_CYCLE_POLICY", "reject")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/quizflow", cfg.DB.DSN)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 5*time.Minute, cfg.HTTP.SessionTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, flow.BranchOnFirstMatch, cfg.Resolver().MultiSelect)
	assert.Equal(t, "reject", cfg.Flow.CyclePolicy)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver", "QUIZFLOW_DB_DRIVER", "mysql"},
		{"multi-select", "QUIZFLOW_MULTI_SELECT_POLICY", "all"},
		{"cycles", "QUIZFLOW_CYCLE_POLICY", "maybe"},
		{"ttl", "QUIZFLOW_SESSION_TTL", "soon"},
		{"zero ttl", "QUIZFLOW_SESSION_TTL", "0s"},
		{"postgres without dsn", "QUIZFLOW_DB_DRIVER", "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quizflow.db")
	t.Setenv("QUIZFLOW_DB_DSN", path)

	cfg, err := Load()
	require.NoError(t, err)

	s, err := cfg.OpenStore()
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "sqlite3", s.Dialect())
}
