package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

const openaiChatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// OpenAIClient is a minimal Chat Completions client — the third LLM
// provider variant the design notes call out but the reference
// implementation never got around to wiring.
type OpenAIClient struct {
	apiKey string
	model  string
	http   *http.Client
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, model: model, http: &http.Client{Timeout: 60 * time.Second}}
}

func (c *OpenAIClient) ProviderName() string { return "openai" }
func (c *OpenAIClient) ModelName() string    { return c.model }

type openaiChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openaiChatMessage `json:"messages"`
	Temperature *float64            `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message openaiChatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if c.apiKey == "" {
		return "", apierr.InvalidState("openai_api_key_missing", fmt.Errorf("OPENAI_API_KEY is not configured"))
	}

	payload := openaiChatRequest{
		Model:       c.model,
		Messages:    []openaiChatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apierr.Internal("openai_request_encode_failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiChatCompletionsURL, bytes.NewReader(body))
	if err != nil {
		return "", apierr.Internal("openai_request_build_failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apierr.Transport("openai_request_failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierr.Transport("openai_response_read_failed", err)
	}
	if resp.StatusCode >= 400 {
		return "", apierr.Transport("openai_request_failed", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, respBody))
	}

	var parsed openaiChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apierr.Parse("openai_response_parse_failed", err)
	}
	if len(parsed.Choices) == 0 {
		return "", apierr.Parse("openai_response_empty", fmt.Errorf("no choices returned"))
	}
	return parsed.Choices[0].Message.Content, nil
}
