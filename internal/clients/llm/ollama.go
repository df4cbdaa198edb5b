package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

// OllamaClient talks to a local Ollama server's non-streaming generate
// endpoint: POST {base}/api/generate.
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
}

func NewOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *OllamaClient) ProviderName() string { return "ollama" }
func (c *OllamaClient) ModelName() string    { return c.model }

type ollamaRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	Stream      bool     `json:"stream"`
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	payload := ollamaRequest{
		Model:       c.model,
		Prompt:      prompt,
		Stream:      false,
		Temperature: opts.Temperature,
		NumPredict:  opts.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apierr.Internal("ollama_request_encode_failed", err)
	}

	url := fmt.Sprintf("%s/api/generate", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apierr.Internal("ollama_request_build_failed", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apierr.Transport("ollama_request_failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierr.Transport("ollama_response_read_failed", err)
	}
	if resp.StatusCode >= 400 {
		return "", apierr.Transport("ollama_request_failed", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, respBody))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apierr.Parse("ollama_response_parse_failed", err)
	}
	return parsed.Response, nil
}
