package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/config"
)

// NewClient builds the configured backend. An empty or "none" provider
// returns a nil client; extraction then runs on the pattern fallback alone.
func NewClient(ctx context.Context, cfg config.OracleConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none", "pattern":
		return nil, nil

	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		client, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return client, nil

	case "ollama":
		// Ollama exposes an OpenAI-compatible endpoint under /v1 and only
		// requires that the API key be non-empty.
		baseURL := strings.TrimRight(cfg.BaseURL, "/")
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", cfg.Provider)
	}
}
