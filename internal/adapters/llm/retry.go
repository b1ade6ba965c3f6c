package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"roombooking/internal/domain"
)

type retryingGenerator struct {
	next       domain.TextGenerator
	maxRetries uint64
	base       time.Duration
}

// withRetry retries transient failures of next with exponential backoff.
func withRetry(next domain.TextGenerator, maxRetries int, base time.Duration) domain.TextGenerator {
	if maxRetries <= 0 {
		return next
	}
	return &retryingGenerator{next: next, maxRetries: uint64(maxRetries), base: base}
}

func (g *retryingGenerator) Generate(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	var out string
	backoff := retry.WithMaxRetries(g.maxRetries, retry.NewExponential(g.base))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		text, err := g.next.Generate(ctx, systemPrompt, history, message)
		if err != nil {
			if isPermanent(err) {
				return err
			}
			return retry.RetryableError(err)
		}
		out = text
		return nil
	})
	return out, err
}

// isPermanent reports errors a retry cannot fix: cancellation, a disabled assistant
// and client errors other than rate limiting.
func isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrDisabled) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.HTTPStatusCode
		return code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		code := reqErr.HTTPStatusCode
		return code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout
	}
	return false
}
