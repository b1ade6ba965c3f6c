package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"roombooking/internal/domain"
	"roombooking/internal/metrics"
)

var llmTracer = otel.Tracer("roombooking.internal.adapters.llm")

type instrumentedGenerator struct {
	next     domain.TextGenerator
	provider string
	timeout  time.Duration
	logger   *zap.Logger
}

// instrument bounds every call by timeout and records its latency and outcome.
func instrument(next domain.TextGenerator, provider string, timeout time.Duration, logger *zap.Logger) domain.TextGenerator {
	return &instrumentedGenerator{next: next, provider: provider, timeout: timeout, logger: logger}
}

func (g *instrumentedGenerator) Generate(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	ctx, span := llmTracer.Start(ctx, "llm.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("roombooking.llm.provider", g.provider)),
	)
	defer span.End()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.next.Generate(ctx, systemPrompt, history, message)
	latency := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.LLMRequestDuration.WithLabelValues(g.provider, status).Observe(latency.Seconds())
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Float64("roombooking.llm.latency_ms", float64(latency.Milliseconds())),
			attribute.Int("roombooking.llm.response_len", len(text)),
		)
	}
	g.logger.Debug("llm completion finished",
		zap.String("provider", g.provider),
		zap.Int64("latency_ms", latency.Milliseconds()),
		zap.String("status", status),
	)
	return text, err
}
