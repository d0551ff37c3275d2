package steps

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/ports"
)

// NoResults is the answer given when the query matched nothing.
const NoResults = "No results found."

// AnswerOptions tunes GenerateAnswer.
type AnswerOptions struct {
	// Model overrides the generator's default model.
	Model string
	// MaxRows caps how many rows are shown to the model. Zero means 30.
	MaxRows int
}

// GenerateAnswer asks the model to answer the Question from the Rows and stores
// the reply under Answer. Without a generator, or when generation fails, the
// answer is a plain table of the rows.
func GenerateAnswer(gen ports.TextGenerator, opts AnswerOptions) domain.Step {
	if opts.MaxRows <= 0 {
		opts.MaxRows = 30
	}
	return domain.StepFunc(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
		if msg, failed := QueryError.Get(c); failed {
			Answer.Set(c, "The query could not be executed: "+msg)
			return domain.OutcomeDefault, nil
		}
		rows := Rows.Or(c, nil)
		if len(rows) == 0 {
			Answer.Set(c, NoResults)
			return domain.OutcomeDefault, nil
		}

		sample := rows
		if len(sample) > opts.MaxRows {
			sample = sample[:opts.MaxRows]
		}
		if gen == nil {
			Answer.Set(c, MarkdownTable(sample))
			return domain.OutcomeDefault, nil
		}

		data, err := json.Marshal(sample)
		if err != nil {
			return "", fmt.Errorf("encode rows for answer: %w", err)
		}
		out, err := gen.Generate(ctx, ports.Prompt{
			Model:       opts.Model,
			System:      answerSystemPrompt,
			User:        fmt.Sprintf(answerUserPrompt, Question.Or(c, ""), Query.Or(c, ""), len(sample), len(rows), data),
			Temperature: 0.2,
		})
		recordUsage(c, PhaseAnswer, out.Usage)
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			Answer.Set(c, MarkdownTable(sample))
			return domain.OutcomeDefault, nil
		}
		Answer.Set(c, out.Text)
		return domain.OutcomeDefault, nil
	})
}
