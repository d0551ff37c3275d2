package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/ports"
)

// DefaultBaseURL is the public OpenAI API.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config holds the client configuration.
type Config struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryWait  time.Duration `mapstructure:"retry_wait"`
	Debug      bool          `mapstructure:"debug"`
}

// Client implements ports.TextGenerator over an OpenAI-compatible chat completions API.
type Client struct {
	model string
	http  *resty.Client
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// New creates a client. Zero values fall back to the public API, gpt-4o-mini,
// a 30s timeout and two retries.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = 500 * time.Millisecond
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWait).
		SetDebug(cfg.Debug).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{model: cfg.Model, http: client}
}

// Model returns the default model.
func (c *Client) Model() string {
	return c.model
}

// Generate sends p as a chat completion request.
func (c *Client) Generate(ctx context.Context, p ports.Prompt) (ports.Generation, error) {
	model := p.Model
	if model == "" {
		model = c.model
	}

	req := chatRequest{Model: model, Temperature: p.Temperature, MaxTokens: p.MaxTokens}
	if p.System != "" {
		req.Messages = append(req.Messages, message{Role: "system", Content: p.System})
	}
	req.Messages = append(req.Messages, message{Role: "user", Content: p.User})

	var out chatResponse
	var apiErr apiError
	began := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	elapsed := time.Since(began)

	if err != nil {
		return ports.Generation{}, &domain.GenerationError{Model: model, Err: fmt.Errorf("chat completion request: %w", err)}
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return ports.Generation{}, &domain.GenerationError{Model: model, Err: fmt.Errorf("%s: %s", resp.Status(), msg)}
	}
	if len(out.Choices) == 0 {
		return ports.Generation{}, &domain.GenerationError{Model: model, Err: fmt.Errorf("response has no choices")}
	}

	if out.Model != "" {
		model = out.Model
	}
	return ports.Generation{
		Text:  strings.TrimSpace(out.Choices[0].Message.Content),
		Model: model,
		Usage: domain.Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
			Duration:         elapsed,
		},
	}, nil
}
