package domain

import "time"

// Usage records the cost of one collaborator call.
type Usage struct {
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	TotalTokens      int           `json:"total_tokens"`
	Duration         time.Duration `json:"duration"`
}

// TokensPerSecond reports throughput, or zero when no time elapsed.
func (u Usage) TokensPerSecond() float64 {
	if u.Duration <= 0 {
		return 0
	}
	return float64(u.TotalTokens) / u.Duration.Seconds()
}
