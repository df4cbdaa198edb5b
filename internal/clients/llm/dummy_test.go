package llm_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inquiryos/inquiry-os/internal/clients/llm"
)

func TestDummyClient_GenerateEchoesPromptSnippet(t *testing.T) {
	client := llm.NewDummyClient("llama3")
	out, err := client.Generate(context.Background(), "what are the risks of dehydration?", llm.Options{})
	require.NoError(t, err)
	require.Contains(t, out, "dummy completion from dummy:llama3")
	require.Contains(t, out, "what are the risks of dehydration?")
}

func TestDummyClient_TruncatesLongPrompts(t *testing.T) {
	client := llm.NewDummyClient("")
	prompt := strings.Repeat("x", 500)
	out, err := client.Generate(context.Background(), prompt, llm.Options{})
	require.NoError(t, err)
	require.Contains(t, out, "…")
}

func TestNewDummyClient_DefaultsModelName(t *testing.T) {
	client := llm.NewDummyClient("")
	require.Equal(t, "dummy-model", client.ModelName())
	require.Equal(t, "dummy", client.ProviderName())
}
