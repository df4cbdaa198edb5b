package llm

import (
	"context"
	"fmt"
	"strings"
)

// DummyClient never calls a real model — used for dev/test when an LLMClient
// must be wired in without network access. The "dummy" pipeline mode's
// synthesis twin does not call any LLMClient.
type DummyClient struct {
	Model string
}

func NewDummyClient(model string) *DummyClient {
	if model == "" {
		model = "dummy-model"
	}
	return &DummyClient{Model: model}
}

func (c *DummyClient) ProviderName() string { return "dummy" }
func (c *DummyClient) ModelName() string    { return c.Model }

func (c *DummyClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	snippet := strings.TrimSpace(prompt)
	if len(snippet) > 200 {
		snippet = snippet[:200] + "…"
	}
	return fmt.Sprintf("[dummy completion from %s:%s] Prompt snippet: %s", c.ProviderName(), c.ModelName(), snippet), nil
}
