// Package llm abstracts the chat-completion backends used for query
// classification and answer composition.
package llm

import (
	"context"
	"fmt"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// NewProvider constructs a provider by name. Names match the config file's
// provider keys.
func NewProvider(name, model string) (Provider, error) {
	switch name {
	case "gemini", "":
		return &GeminiProvider{Model: model}, nil
	case "deepseek":
		return &ChatProvider{
			BaseURL: "https://api.deepseek.com",
			Model:   model,
			EnvKey:  "DEEPSEEK_API_KEY",
		}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", name)
	}
}
