package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/practix/internal/logger"
	"github.com/abhisek/practix/internal/store"
)

// NewBaseProvider creates a Provider from configuration, wrapped with
// middleware: caller → rate limit → logging → base. It has no retry layer;
// callers that do not run their own retry loop wrap it with WithRetry, so
// every path shares one rate limiter. eventRepo may be nil.
func NewBaseProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, eventRepo, log)
	return WithRateLimit(p, cfg.RateLimit), nil
}
