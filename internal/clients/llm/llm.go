// Package llm defines the pluggable LLMClient contract and its provider
// implementations (dummy, Ollama, OpenAI).
package llm

import "context"

type Options struct {
	Temperature *float64
	MaxTokens   int
}

type Client interface {
	ProviderName() string
	ModelName() string
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
