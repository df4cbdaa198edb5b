package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOllamaClient_GenerateParsesResponseField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response": "hydration supports cognition and temperature regulation"}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3")
	out, err := client.Generate(context.Background(), "why hydrate?", Options{MaxTokens: 100})
	require.NoError(t, err)
	require.Equal(t, "hydration supports cognition and temperature regulation", out)
	require.Equal(t, "ollama", client.ProviderName())
	require.Equal(t, "llama3", client.ModelName())
}

func TestOllamaClient_GenerateSurfacesHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3")
	_, err := client.Generate(context.Background(), "prompt", Options{})
	require.Error(t, err)
}

func TestNewOllamaClient_TrimsTrailingSlashFromBaseURL(t *testing.T) {
	client := NewOllamaClient("http://localhost:11434/", "llama3")
	require.Equal(t, "http://localhost:11434", client.baseURL)
}
