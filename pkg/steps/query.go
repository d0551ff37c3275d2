package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/ports"
)

// Mode selects how RunQuery reacts to a failing query.
type Mode int

const (
	// Strict fails the step, halting the flow.
	Strict Mode = iota
	// Tolerant records the failure under QueryError and lets the flow continue.
	Tolerant
)

// RunQuery executes the SQL under Query and stores the rows under Rows.
func RunQuery(runner ports.QueryRunner, mode Mode) domain.Step {
	return domain.StepFunc(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
		if runner == nil {
			return "", fmt.Errorf("run query: no query runner configured")
		}
		sql, err := Query.Must(c)
		if err != nil {
			return "", err
		}

		began := time.Now()
		rows, err := runner.Query(ctx, sql)
		recordUsage(c, PhaseQuery, domain.Usage{Duration: time.Since(began)})
		if err != nil {
			if mode == Strict || ctx.Err() != nil {
				return "", err
			}
			c.Delete(Rows.Name())
			QueryError.Set(c, err.Error())
			return domain.OutcomeDefault, nil
		}

		c.Delete(QueryError.Name())
		if rows == nil {
			rows = []domain.Row{}
		}
		Rows.Set(c, rows)
		return domain.OutcomeDefault, nil
	})
}
