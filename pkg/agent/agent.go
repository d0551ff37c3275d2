package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/civicflow"
	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/dsl"
	"github.com/aretw0/civicflow/pkg/ports"
	"github.com/aretw0/civicflow/pkg/steps"
)

// Flow names accepted by Flow.
const (
	FlowQA    = "qa"
	FlowAgent = "agent"
)

// Step names of the QA pipeline.
const (
	StepFetchSchema    = "fetch_schema"
	StepGenerateQuery  = "generate_query"
	StepRunQuery       = "run_query"
	StepPlotMap        = "plot_map"
	StepGenerateAnswer = "generate_answer"
	StepSummary        = "summary"
)

// Step names of the query agent.
const (
	StepTranslate     = "translate_nl"
	StepQueryDatabase = "query_database"
	StepFormatResults = "format_results"
)

// Config holds the collaborators the flows are built from. Runner and Inspector
// are required; every other collaborator is optional.
type Config struct {
	Generator ports.TextGenerator
	Runner    ports.QueryRunner
	Inspector ports.SchemaInspector
	Renderer  ports.MapRenderer
	Cache     ports.TranslationCache

	// QueryModel and AnswerModel override the generator's default model per phase.
	QueryModel   string
	AnswerModel  string
	DefaultTable string
	CostPerToken float64
	MaxRows      int
	// MaxInputSize bounds questions and SQL in bytes. Zero means DefaultMaxInputSize.
	MaxInputSize int

	Logger *slog.Logger
}

// Agent answers questions about civic incident data.
type Agent struct {
	qa       *civicflow.Engine
	query    *civicflow.Engine
	table    string
	maxInput int
	logger   *slog.Logger
}

// Request is a natural-language question for Ask.
type Request struct {
	Question string `json:"question"`
	// Table narrows schema lookup. Empty means the configured default.
	Table string `json:"table,omitempty"`
	NoMap bool   `json:"no_map,omitempty"`
}

// Result is what a flow left in its context, in a shape callers can print or encode.
type Result struct {
	Question   string       `json:"question,omitempty"`
	SQL        string       `json:"sql"`
	Mode       string       `json:"translation_mode,omitempty"`
	Rows       []domain.Row `json:"rows"`
	QueryError string       `json:"query_error,omitempty"`
	Answer     string       `json:"answer,omitempty"`
	Formatted  string       `json:"formatted_output,omitempty"`
	MapFile    string       `json:"map_file,omitempty"`
	Summary    steps.Totals `json:"summary"`
	Path       []string     `json:"execution_path"`
}

// New builds both flows. Engine options (limits, hooks, logger) apply to both.
func New(cfg Config, opts ...civicflow.Option) (*Agent, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("agent: query runner is required")
	}
	if cfg.Inspector == nil {
		return nil, fmt.Errorf("agent: schema inspector is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.DefaultTable == "" {
		cfg.DefaultTable = steps.DefaultTable
	}

	qopts := steps.QueryOptions{Model: cfg.QueryModel, DefaultTable: cfg.DefaultTable}

	qa := civicflow.New(append([]civicflow.Option{civicflow.WithName(FlowQA)}, opts...)...)
	b := dsl.New()
	b.Add(StepFetchSchema).Do(steps.FetchSchema(cfg.Inspector)).Go(StepGenerateQuery)
	b.Add(StepGenerateQuery).Do(steps.GenerateQuery(cfg.Generator, cfg.Cache, qopts)).Go(StepRunQuery)
	b.Add(StepRunQuery).Do(steps.RunQuery(cfg.Runner, steps.Strict)).Go(StepPlotMap)
	b.Add(StepPlotMap).Do(steps.PlotMap(cfg.Renderer)).Go(StepGenerateAnswer)
	b.Add(StepGenerateAnswer).Do(steps.GenerateAnswer(cfg.Generator, steps.AnswerOptions{Model: cfg.AnswerModel, MaxRows: cfg.MaxRows})).Go(StepSummary)
	b.Add(StepSummary).Do(steps.Summary(cfg.CostPerToken))
	if err := b.Build(qa); err != nil {
		return nil, fmt.Errorf("build %s flow: %w", FlowQA, err)
	}

	query := civicflow.New(append([]civicflow.Option{civicflow.WithName(FlowAgent)}, opts...)...)
	b = dsl.New()
	aopts := qopts
	aopts.Passthrough = true
	b.Add(StepTranslate).Do(steps.GenerateQuery(cfg.Generator, cfg.Cache, aopts)).Go(StepQueryDatabase)
	b.Add(StepQueryDatabase).Do(steps.RunQuery(cfg.Runner, steps.Tolerant)).Go(StepFormatResults)
	b.Add(StepFormatResults).Do(steps.FormatResults())
	if err := b.Build(query); err != nil {
		return nil, fmt.Errorf("build %s flow: %w", FlowAgent, err)
	}

	return &Agent{qa: qa, query: query, table: cfg.DefaultTable, maxInput: cfg.MaxInputSize, logger: cfg.Logger}, nil
}

// Ask runs the QA pipeline for a natural-language question.
func (a *Agent) Ask(ctx context.Context, req Request) (*Result, error) {
	question, err := SanitizeInput(req.Question, a.maxInput)
	if err != nil {
		return nil, fmt.Errorf("question rejected: %w", err)
	}
	table := req.Table
	if table == "" {
		table = a.table
	}

	c := domain.NewContext(nil)
	steps.Question.Set(c, question)
	steps.Table.Set(c, table)
	steps.SkipMap.Set(c, req.NoMap)

	c, err = a.qa.Execute(ctx, c, StepFetchSchema)
	res := resultFrom(c)
	if err != nil {
		a.logger.WarnContext(ctx, "ask failed", "question", question, "path", res.Path, "error", err)
		return res, err
	}
	a.logger.InfoContext(ctx, "ask completed", "question", question, "rows", len(res.Rows), "mode", res.Mode, "tokens", res.Summary.Tokens)
	return res, nil
}

// Query runs the query agent. Input may be SQL, which is executed as-is, or a
// question, which is translated first. Query failures are reported in
// Result.QueryError and Result.Formatted rather than as an error.
func (a *Agent) Query(ctx context.Context, input string) (*Result, error) {
	input, err := SanitizeInput(input, a.maxInput)
	if err != nil {
		return nil, fmt.Errorf("query rejected: %w", err)
	}

	c := domain.NewContext(nil)
	if steps.LooksLikeSQL(input) {
		steps.Query.Set(c, input)
	} else {
		steps.Question.Set(c, input)
	}

	c, err = a.query.Execute(ctx, c, StepTranslate)
	res := resultFrom(c)
	if err != nil {
		return res, err
	}
	a.logger.InfoContext(ctx, "query completed", "rows", len(res.Rows), "mode", res.Mode, "failed", res.QueryError != "")
	return res, nil
}

// Flow returns the description of the named flow.
func (a *Agent) Flow(name string) (domain.FlowDescription, error) {
	switch name {
	case FlowQA, "":
		return a.qa.Inspect(), nil
	case FlowAgent:
		return a.query.Inspect(), nil
	}
	return domain.FlowDescription{}, fmt.Errorf("unknown flow %q (want %s or %s)", name, FlowQA, FlowAgent)
}

// Flows describes both flows, QA pipeline first.
func (a *Agent) Flows() []domain.FlowDescription {
	return []domain.FlowDescription{a.qa.Inspect(), a.query.Inspect()}
}

// Validate checks both flows for transitions to unregistered steps.
func (a *Agent) Validate() error {
	return errors.Join(a.qa.Validate(), a.query.Validate())
}

func resultFrom(c *domain.Context) *Result {
	return &Result{
		Question:   steps.Question.Or(c, ""),
		SQL:        steps.Query.Or(c, ""),
		Mode:       steps.TranslationMode.Or(c, ""),
		Rows:       steps.Rows.Or(c, nil),
		QueryError: steps.QueryError.Or(c, ""),
		Answer:     steps.Answer.Or(c, ""),
		Formatted:  steps.FormattedOutput.Or(c, ""),
		MapFile:    steps.MapFile.Or(c, ""),
		Summary:    steps.RunSummary.Or(c, steps.Totals{}),
		Path:       c.Path(),
	}
}
