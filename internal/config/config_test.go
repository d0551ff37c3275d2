package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "civicflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 1000, cfg.Flow.MaxSteps)
	assert.Equal(t, "crimes311", cfg.Flow.DefaultTable)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.False(t, cfg.GenerationEnabled())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
database:
  url: ${DB_URL:postgres://localhost/crime}
  max_open_conns: 4
  query_timeout: 5s
openai:
  api_key: ${OPENAI_API_KEY}
  model: gpt-4o
  answer_model: gpt-4o-mini
  timeout: 10s
cache:
  backend: redis
  ttl: 1h
  redis:
    addr: ${REDIS_HOST:localhost}:6379
flow:
  max_steps: 25
  step_timeout: 20s
  default_table: dorchester_311
server:
  addr: ":9090"
log:
  level: debug
  format: json
`)
	cfg, err := load(path, env(map[string]string{"OPENAI_API_KEY": "sk-abc"}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/crime", cfg.Database.DSN)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns, "unset keys keep defaults")
	assert.Equal(t, "sk-abc", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 10*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 25, cfg.Flow.MaxSteps)
	assert.Equal(t, 20*time.Second, cfg.Flow.StepTimeout)
	assert.Equal(t, "dorchester_311", cfg.Flow.DefaultTable)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.GenerationEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "openai:\n  model: from-file\n")
	cfg, err := load(path, env(map[string]string{
		"DB_URL":               "postgres://u:p@db/crime",
		"OPENAI_MODEL":         "from-env",
		"OPENAI_SUMMARY_MODEL": "summary-env",
		"OPENAI_BASE_URL":      "http://localhost:11434/v1",
		"REDIS_ADDR":           "cache:6379",
		"CIVICFLOW_API_KEY":    "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db/crime", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.OpenAI.Model)
	assert.Equal(t, "summary-env", cfg.OpenAI.AnswerModel)
	assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "secret", cfg.Server.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing required variable", "database:\n  url: ${NOT_SET_ANYWHERE}\n"},
		{"unknown key", "flow:\n  max_stepz: 3\n"},
		{"bad duration", "flow:\n  timeout: soon\n"},
		{"redis without addr", "cache:\n  backend: redis\n"},
		{"unknown backend", "cache:\n  backend: memcached\n"},
		{"bad yaml", "flow: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeConfig(t, tt.content), env(nil))
			assert.Error(t, err)
		})
	}

	_, err := load(filepath.Join(t.TempDir(), "absent.yaml"), env(nil))
	assert.Error(t, err)
}

func TestLoad_EmptyDefaultClearsNumber(t *testing.T) {
	path := writeConfig(t, "flow:\n  max_rows: ${MAX_ROWS:}\n  step_timeout: ${STEP_TIMEOUT:}\n")
	cfg, err := load(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Flow.MaxRows)
	assert.Equal(t, time.Duration(0), cfg.Flow.StepTimeout)
}
