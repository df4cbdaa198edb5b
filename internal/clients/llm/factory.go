package llm

import (
	"fmt"
	"strings"

	"github.com/inquiryos/inquiry-os/internal/platform/envutil"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

type Config struct {
	Provider       string
	Model          string
	OllamaBaseURL  string
	OpenAIAPIKey   string
	OpenAIModel    string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Provider:      envutil.String("LLM_PROVIDER", "ollama", log),
		Model:         envutil.String("LLM_MODEL", "llama3", log),
		OllamaBaseURL: envutil.String("OLLAMA_BASE_URL", "http://localhost:11434", log),
		OpenAIAPIKey:  envutil.String("OPENAI_API_KEY", "", log),
		OpenAIModel:   envutil.String("OPENAI_MODEL", "gpt-4.1-mini", log),
	}
}

// New returns the configured provider's Client. Supported: dummy/dev,
// ollama, openai.
func New(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "dummy", "dev":
		return NewDummyClient(cfg.Model), nil
	case "ollama":
		return NewOllamaClient(cfg.OllamaBaseURL, cfg.Model), nil
	case "openai":
		model := cfg.Model
		if model == "" || model == "llama3" {
			model = cfg.OpenAIModel
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q (currently supported: dummy, ollama, openai)", cfg.Provider)
	}
}
