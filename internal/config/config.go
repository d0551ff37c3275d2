package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/civicflow/pkg/adapters/openai"
	"github.com/aretw0/civicflow/pkg/adapters/postgres"
)

// Config is the complete application configuration.
type Config struct {
	Database postgres.Config `mapstructure:"database"`
	OpenAI   OpenAI          `mapstructure:"openai"`
	Cache    Cache           `mapstructure:"cache"`
	Maps     Maps            `mapstructure:"maps"`
	Flow     Flow            `mapstructure:"flow"`
	Server   Server          `mapstructure:"server"`
	Log      Log             `mapstructure:"log"`
}

// OpenAI configures text generation. The generator is disabled when APIKey is empty.
type OpenAI struct {
	openai.Config `mapstructure:",squash"`
	// AnswerModel is used for answer generation; Model for SQL generation.
	AnswerModel string `mapstructure:"answer_model"`
}

// Cache configures the translation cache.
type Cache struct {
	// Backend is "memory", "redis" or "none". Empty selects redis when an
	// address is set and memory otherwise.
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   Redis         `mapstructure:"redis"`
}

// Redis holds the connection settings of the redis cache backend.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Maps configures map artifacts.
type Maps struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
	Zoom    int    `mapstructure:"zoom"`
}

// Flow tunes the engine and the step kinds.
type Flow struct {
	MaxSteps     int           `mapstructure:"max_steps"`
	StepTimeout  time.Duration `mapstructure:"step_timeout"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DefaultTable string        `mapstructure:"default_table"`
	CostPerToken float64       `mapstructure:"cost_per_token"`
	MaxRows      int           `mapstructure:"max_rows"`
	MaxInputSize int           `mapstructure:"max_input_size"`
}

// Server configures the HTTP and MCP boundaries.
type Server struct {
	Addr         string        `mapstructure:"addr"`
	APIKey       string        `mapstructure:"api_key"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Log configures the application logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: postgres.Config{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			QueryTimeout:    30 * time.Second,
		},
		OpenAI: OpenAI{
			Config: openai.Config{
				BaseURL:    openai.DefaultBaseURL,
				Model:      "gpt-4o-mini",
				Timeout:    30 * time.Second,
				MaxRetries: 2,
				RetryWait:  500 * time.Millisecond,
			},
			AnswerModel: "gpt-4o-mini",
		},
		Cache: Cache{
			TTL:   24 * time.Hour,
			Redis: Redis{Prefix: "civicflow:sql:"},
		},
		Maps: Maps{Enabled: true, Dir: "maps", Zoom: 12},
		Flow: Flow{
			MaxSteps:     1000,
			Timeout:      2 * time.Minute,
			DefaultTable: "crimes311",
			CostPerToken: 0.00015,
			MaxRows:      30,
			MaxInputSize: 4096,
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path over the defaults, expands ${VAR} and
// ${VAR:default} references in string values, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		if err := decode(data, cfg, lookup); err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	}

	applyEnv(cfg, lookup)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config, lookup LookupFunc) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	expanded, err := expandTree(raw, lookup)
	if err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			emptyStringHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(expanded)
}

// emptyStringHook lets "${VAR:}" clear numeric and boolean fields instead of failing.
func emptyStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || data.(string) != "" {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int64, reflect.Float64, reflect.Bool:
		return reflect.Zero(to).Interface(), nil
	}
	return data, nil
}

// envOverrides maps environment variables onto configuration fields.
var envOverrides = []struct {
	name  string
	apply func(*Config, string)
}{
	{"DB_URL", func(c *Config, v string) { c.Database.DSN = v }},
	{"OPENAI_API_KEY", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"OPENAI_MODEL", func(c *Config, v string) { c.OpenAI.Model = v }},
	{"OPENAI_SUMMARY_MODEL", func(c *Config, v string) { c.OpenAI.AnswerModel = v }},
	{"OPENAI_BASE_URL", func(c *Config, v string) { c.OpenAI.BaseURL = v }},
	{"REDIS_ADDR", func(c *Config, v string) { c.Cache.Redis.Addr = v }},
	{"CIVICFLOW_API_KEY", func(c *Config, v string) { c.Server.APIKey = v }},
}

func applyEnv(cfg *Config, lookup LookupFunc) {
	for _, o := range envOverrides {
		if v, ok := lookup(o.name); ok && strings.TrimSpace(v) != "" {
			o.apply(cfg, strings.TrimSpace(v))
		}
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
		if cfg.Cache.Redis.Addr != "" {
			cfg.Cache.Backend = "redis"
		}
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("config: cache.backend is redis but no cache.redis.addr or REDIS_ADDR is set")
		}
	default:
		return fmt.Errorf("config: unknown cache backend %q (want memory, redis or none)", c.Cache.Backend)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q (want text or json)", c.Log.Format)
	}
	if c.Flow.MaxSteps < 0 {
		return fmt.Errorf("config: flow.max_steps must not be negative")
	}
	return nil
}

// GenerationEnabled reports whether an API key is configured.
func (c *Config) GenerationEnabled() bool {
	return c.OpenAI.APIKey != ""
}
