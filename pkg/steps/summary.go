package steps

import (
	"context"

	"github.com/aretw0/civicflow/pkg/domain"
)

// DefaultCostPerToken approximates the price of one gpt-4o-mini token in USD.
const DefaultCostPerToken = 0.00015

// Summary totals the recorded usage under RunSummary and ends the flow.
func Summary(costPerToken float64) domain.Step {
	if costPerToken <= 0 {
		costPerToken = DefaultCostPerToken
	}
	return domain.StepFunc(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
		phases := UsageByPhase.Or(c, nil)
		totals := Totals{Phases: make(map[string]domain.Usage, len(phases))}
		for phase, u := range phases {
			totals.Phases[phase] = u
			totals.Time += u.Duration
			totals.Tokens += u.TotalTokens
		}
		totals.Cost = float64(totals.Tokens) * costPerToken
		RunSummary.Set(c, totals)
		return domain.OutcomeStop, nil
	})
}
