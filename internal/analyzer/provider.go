package analyzer

import (
	"context"
	"fmt"

	"cryptoassist/internal/config"
)

// NewCompleter builds the backend selected by AI_PROVIDER.
func NewCompleter(ctx context.Context, cfg *config.Config) (Completer, error) {
	switch cfg.AIProvider {
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.AIModel)
	case config.ProviderVertex:
		return NewVertexCompleter(ctx, cfg.GoogleProjectID, cfg.GoogleLocation, cfg.AIModel)
	case config.ProviderOpenAI:
		return NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.AIModel), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.AIProvider)
	}
}
