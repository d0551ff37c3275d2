package steps

import (
	"time"

	"github.com/aretw0/civicflow/pkg/domain"
)

// Well-known context keys shared by the step kinds in this package.
var (
	Table           = domain.NewKey[string]("table")
	Question        = domain.NewKey[string]("question")
	Schema          = domain.NewKey[string]("schema")
	Query           = domain.NewKey[string]("query")
	TranslationMode = domain.NewKey[string]("translation_mode")
	Rows            = domain.NewKey[[]domain.Row]("rows")
	QueryError      = domain.NewKey[string]("query_error")
	FormattedOutput = domain.NewKey[string]("formatted_output")
	MapFile         = domain.NewKey[string]("map_file")
	SkipMap         = domain.NewKey[bool]("skip_map")
	Answer          = domain.NewKey[string]("answer")
	UsageByPhase    = domain.NewKey[map[string]domain.Usage]("usage")
	RunSummary      = domain.NewKey[Totals]("summary")
)

// Phases under which usage is recorded.
const (
	PhaseTranslation = "sql_generation"
	PhaseQuery       = "query_execution"
	PhaseAnswer      = "answer_generation"
)

// Translation modes recorded under TranslationMode.
const (
	ModePassthrough = "passthrough"
	ModeRules       = "fallback_rules"
	ModeCache       = "cache"
	ModeLLM         = "llm"
)

// Totals is the summary written by the Summary step.
type Totals struct {
	Time   time.Duration           `json:"time"`
	Tokens int                     `json:"tokens"`
	Cost   float64                 `json:"cost"`
	Phases map[string]domain.Usage `json:"phases"`
}

func recordUsage(c *domain.Context, phase string, u domain.Usage) {
	prev := UsageByPhase.Or(c, nil)
	next := make(map[string]domain.Usage, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[phase] = u
	UsageByPhase.Set(c, next)
}
