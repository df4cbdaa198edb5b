package llm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inquiryos/inquiry-os/internal/clients/llm"
)

func TestNew_SelectsProviderByConfig(t *testing.T) {
	cases := []struct {
		provider string
		wantName string
	}{
		{"dummy", "dummy"},
		{"dev", "dummy"},
		{"ollama", "ollama"},
		{"openai", "openai"},
		{"OLLAMA", "ollama"},
	}
	for _, tc := range cases {
		client, err := llm.New(llm.Config{Provider: tc.provider, Model: "llama3"})
		require.NoError(t, err, tc.provider)
		require.Equal(t, tc.wantName, client.ProviderName(), tc.provider)
	}
}

func TestNew_RejectsUnknownProvider(t *testing.T) {
	_, err := llm.New(llm.Config{Provider: "claude"})
	require.Error(t, err)
}

func TestNew_OpenAIFallsBackToOpenAIModelWhenModelIsDefault(t *testing.T) {
	client, err := llm.New(llm.Config{Provider: "openai", Model: "llama3", OpenAIModel: "gpt-4.1-mini"})
	require.NoError(t, err)
	require.Equal(t, "gpt-4.1-mini", client.ModelName())
}
