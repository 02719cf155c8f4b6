package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/healthrisk/internal/config"
	"github.com/go-logr/logr"
)

// NewClient returns the client for the configured provider, or nil when no provider is set.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger logr.Logger) (LLMClient, error) {
	log := logger.WithName("llm")
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "":
		log.Info("No LLM provider configured; narratives and free-text extraction by model are disabled")
		return nil, nil

	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return c, nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		log.Info("Using Ollama through its OpenAI-compatible API", "baseURL", baseURL)

		// Ollama ignores the key but the client requires one.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
