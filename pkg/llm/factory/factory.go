package factory

import (
	"fmt"

	"ai-memory-capture/pkg/llm"
	"ai-memory-capture/pkg/llm/ollama"
	llmopenai "ai-memory-capture/pkg/llm/openai"

	"github.com/openai/openai-go/option"
)

type ProviderConfig struct {
	Type    string
	Model   string
	BaseURL string
	APIKey  string
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Type {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		var opts []option.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		return llmopenai.NewOpenAIProvider(cfg.APIKey, cfg.Model, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Type)
	}
}
