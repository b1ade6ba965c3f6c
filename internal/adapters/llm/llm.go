package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"roombooking/internal/domain"
)

// Provider names accepted by NewTextGenerator.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderGemini     = "gemini"
	ProviderNone       = "none"
)

// ErrDisabled is returned by the generator of the "none" provider.
var ErrDisabled = errors.New("booking assistant is disabled")

// ErrEmptyCompletion is returned when the model answers with no content.
var ErrEmptyCompletion = errors.New("model returned no completion")

// Config holds configuration for creating a text generator.
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// NewTextGenerator creates the transport for the configured provider, wrapped with
// retries and instrumentation. Provider "none" (or empty) returns a generator that
// always fails, which the assistant reports as a degraded turn. The returned func
// releases the provider's client and is never nil.
func NewTextGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (domain.TextGenerator, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var base domain.TextGenerator
	switch provider {
	case ProviderOpenAI, ProviderOpenRouter:
		if cfg.APIKey == "" {
			return nil, noopClose, fmt.Errorf("%s provider requires an API key", provider)
		}
		base = NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model, true)
	case ProviderOllama:
		// Ollama ignores the key but the client sends one.
		base = NewOpenAIGenerator("ollama", cfg.BaseURL, cfg.Model, false)
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, noopClose, fmt.Errorf("gemini provider requires an API key")
		}
		g, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, noopClose, err
		}
		base = g
	case ProviderNone, "":
		logger.Warn("no AI provider configured, booking assistant disabled")
		return disabledGenerator{}, noopClose, nil
	default:
		return nil, noopClose, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}

	gen := withRetry(base, cfg.MaxRetries, 500*time.Millisecond)
	return instrument(gen, provider, cfg.Timeout, logger), closerFor(base, logger), nil
}

func noopClose() {}

// closerFor returns a func closing base when the transport holds a client.
func closerFor(base domain.TextGenerator, logger *zap.Logger) func() {
	c, ok := base.(io.Closer)
	if !ok {
		return noopClose
	}
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("close language model client", zap.Error(err))
		}
	}
}

type disabledGenerator struct{}

func (disabledGenerator) Generate(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	return "", ErrDisabled
}
