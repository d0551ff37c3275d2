package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/civicflow"
	"github.com/aretw0/civicflow/internal/config"
	"github.com/aretw0/civicflow/pkg/adapters/leaflet"
	"github.com/aretw0/civicflow/pkg/adapters/memory"
	"github.com/aretw0/civicflow/pkg/adapters/openai"
	"github.com/aretw0/civicflow/pkg/adapters/postgres"
	"github.com/aretw0/civicflow/pkg/adapters/redis"
	"github.com/aretw0/civicflow/pkg/agent"
	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/observability"
	"github.com/aretw0/civicflow/pkg/ports"
)

// Database is what the flows need from the relational store.
type Database interface {
	ports.QueryRunner
	ports.SchemaInspector
}

// App holds the wired collaborators of one CLI invocation.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Agent   *agent.Agent
	Metrics *observability.Metrics

	closers []func() error
}

// NewApp opens the database and wires every collaborator the configuration enables.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("no database configured: set DB_URL or database.url")
	}
	db, err := postgres.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app, err := assemble(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.closers = append(app.closers, db.Close)
	return app, nil
}

// assemble builds the agent around db. Optional collaborators are left nil when
// disabled so the steps take their fallback paths.
func assemble(ctx context.Context, cfg *config.Config, logger *slog.Logger, db Database) (*App, error) {
	app := &App{Config: cfg, Logger: logger, Metrics: observability.NewMetrics()}

	var generator ports.TextGenerator
	if cfg.GenerationEnabled() {
		generator = openai.New(cfg.OpenAI.Config)
		logger.Debug("text generation enabled", "model", cfg.OpenAI.Model, "base_url", cfg.OpenAI.BaseURL)
	} else {
		logger.Info("no OpenAI API key configured, using keyword rules and table answers")
	}

	cache, err := app.newCache(ctx)
	if err != nil {
		return nil, err
	}

	var renderer ports.MapRenderer
	if cfg.Maps.Enabled {
		renderer = leaflet.New(cfg.Maps.Dir, leaflet.WithZoom(cfg.Maps.Zoom))
	}

	ag, err := agent.New(agent.Config{
		Generator:    generator,
		Runner:       db,
		Inspector:    db,
		Renderer:     renderer,
		Cache:        cache,
		QueryModel:   cfg.OpenAI.Model,
		AnswerModel:  cfg.OpenAI.AnswerModel,
		DefaultTable: cfg.Flow.DefaultTable,
		CostPerToken: cfg.Flow.CostPerToken,
		MaxRows:      cfg.Flow.MaxRows,
		MaxInputSize: cfg.Flow.MaxInputSize,
		Logger:       logger,
	},
		civicflow.WithLogger(logger),
		civicflow.WithMaxSteps(cfg.Flow.MaxSteps),
		civicflow.WithStepTimeout(cfg.Flow.StepTimeout),
		civicflow.WithLifecycleHooks(app.Metrics.Hooks()),
		civicflow.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	if err != nil {
		return nil, err
	}
	app.Agent = ag
	return app, nil
}

func (a *App) newCache(ctx context.Context) (ports.TranslationCache, error) {
	cfg := a.Config.Cache
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "memory":
		return memory.NewCache(memory.WithTTL(cfg.TTL)), nil
	case "redis":
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		opts := []redis.Option{redis.WithTTL(cfg.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		cache := redis.NewFromClient(client, opts...)
		a.closers = append(a.closers, cache.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := cache.Ping(pingCtx); err != nil {
			// Cache errors read as misses, so the flows still work without it.
			a.Logger.Warn("redis cache unreachable", "addr", cfg.Redis.Addr, "error", err)
		}
		return cache, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// Ask runs the QA flow under the configured overall timeout.
func (a *App) Ask(ctx context.Context, req agent.Request) (*agent.Result, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.Agent.Ask(ctx, req)
}

// Query runs the query agent under the configured overall timeout.
func (a *App) Query(ctx context.Context, input string) (*agent.Result, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.Agent.Query(ctx, input)
}

// Flow describes the named flow.
func (a *App) Flow(name string) (domain.FlowDescription, error) {
	return a.Agent.Flow(name)
}

// Flows describes both flows.
func (a *App) Flows() []domain.FlowDescription {
	return a.Agent.Flows()
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Config.Flow.Timeout > 0 {
		return context.WithTimeout(ctx, a.Config.Flow.Timeout)
	}
	return context.WithCancel(ctx)
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
