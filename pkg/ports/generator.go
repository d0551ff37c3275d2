package ports

import (
	"context"

	"github.com/aretw0/civicflow/pkg/domain"
)

// Prompt is a single chat-style request to a language model.
type Prompt struct {
	// Model overrides the generator's default model when set.
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Generation is the model's reply.
type Generation struct {
	Text  string
	Model string
	Usage domain.Usage
}

// TextGenerator produces text from a prompt.
// Failures are reported as *domain.GenerationError.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (Generation, error)
}
