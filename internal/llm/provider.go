package llm

import (
	"context"
	"fmt"

	"github.com/spherical/idcard-extractor/internal/config"
	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/observability"
)

// Provider is an Extractor that may hold connections.
type Provider interface {
	domain.Extractor
	Close() error
}

// New builds the provider selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, logger *observability.Logger) (Provider, error) {
	opts := OptionsFromConfig(cfg)

	switch cfg.Provider {
	case config.ProviderOpenRouter, "":
		return NewClient(cfg.OpenRouter, opts, logger), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAI, opts, logger), nil
	case config.ProviderVertex:
		return NewVertexClient(ctx, cfg.Vertex, opts, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}

// ExtractorFunc adapts a function to the Provider interface.
type ExtractorFunc func(ctx context.Context, image []byte) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, image []byte) (string, error) {
	return f(ctx, image)
}

func (f ExtractorFunc) Close() error {
	return nil
}
