// Package providers holds configuration types shared by the concrete chat
// provider implementations.
package providers

import (
	"time"

	"github.com/RaghavOG/advance-rag/llm"
)

// OpenAIConfig configures the OpenAI-compatible chat provider.
type OpenAIConfig struct {
	APIKey     string        `json:"api_key" yaml:"api_key"`
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	Model      string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxRetries int           `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
}

// ChooseModel picks the model from the request, the configured default, or
// the fallback, in that order.
func ChooseModel(req *llm.ChatRequest, configured, fallback string) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	if configured != "" {
		return configured
	}
	return fallback
}
