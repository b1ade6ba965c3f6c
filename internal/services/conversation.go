package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"roombooking/internal/domain"
	"roombooking/internal/metrics"
)

// TransportFailureMessage is shown when the language model could not be reached.
const TransportFailureMessage = "I had trouble understanding that, please rephrase."

var errNoGenerator = errors.New("assistant has no language model configured")

var conversationTracer = otel.Tracer("roombooking.internal.services.conversation")

type conversationEngine struct {
	generator domain.TextGenerator
	prompts   *PromptBuilder
	today     func() civil.Date
	logger    *zap.Logger
}

// NewConversationEngine returns a ConversationService driving generator with prompts
// built from the room catalogue. today anchors relative dates; nil uses the local clock.
func NewConversationEngine(generator domain.TextGenerator, prompts *PromptBuilder, today func() civil.Date, logger *zap.Logger) domain.ConversationService {
	if prompts == nil {
		prompts = NewPromptBuilder(DefaultBookingDuration)
	}
	if today == nil {
		today = Today
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &conversationEngine{generator: generator, prompts: prompts, today: today, logger: logger}
}

// Converse runs one assistant turn. The returned history is the input history
// followed by the user message and the assistant reply; the input is not modified.
func (e *conversationEngine) Converse(ctx context.Context, message string, history []domain.ChatTurn, rooms []domain.RoomSummary) *domain.ConversationResult {
	ctx, span := conversationTracer.Start(ctx, "conversation.turn")
	defer span.End()
	span.SetAttributes(
		attribute.Int("roombooking.history_turns", len(history)),
		attribute.Int("roombooking.rooms", len(rooms)),
	)

	prompt, err := e.prompts.Build(rooms, e.today())
	if err != nil {
		span.RecordError(err)
		return e.transportFailure(message, history, err)
	}

	if e.generator == nil {
		return e.transportFailure(message, history, errNoGenerator)
	}
	raw, err := e.generator.Generate(ctx, prompt, history, message)
	if err != nil {
		span.RecordError(err)
		e.logger.Warn("assistant model call failed", zap.Error(err))
		return e.transportFailure(message, history, err)
	}

	ex := NormalizeExtraction(raw)
	reply := replyText(ex)
	ready := !ex.Degraded && ex.Clarification == "" && IsReady(ex.Slots, reply)

	outcome := metrics.OutcomePending
	switch {
	case ex.Degraded:
		outcome = metrics.OutcomeDegraded
		e.logger.Info("assistant output not recoverable", zap.String("error", ex.Error), zap.Int("raw_len", len(raw)))
	case ready:
		outcome = metrics.OutcomeReady
	}
	metrics.AssistantTurns.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("roombooking.outcome", outcome))

	return &domain.ConversationResult{
		Message:     reply,
		Ready:       ready,
		BookingData: ex.Slots,
		Confidence:  ex.Confidence,
		Degraded:    ex.Degraded,
		RawText:     ex.RawText,
		Error:       ex.Error,
		History:     extendHistory(history, message, reply),
	}
}

// ParseOnce extracts a booking from a single message with no prior history.
func (e *conversationEngine) ParseOnce(ctx context.Context, text string, rooms []domain.RoomSummary) *domain.ConversationResult {
	return e.Converse(ctx, text, nil, rooms)
}

func (e *conversationEngine) transportFailure(message string, history []domain.ChatTurn, err error) *domain.ConversationResult {
	metrics.AssistantTurns.WithLabelValues(metrics.OutcomeTransport).Inc()
	return &domain.ConversationResult{
		Message:    TransportFailureMessage,
		Confidence: domain.ConfidenceLow,
		Degraded:   true,
		Error:      err.Error(),
		History:    extendHistory(history, message, TransportFailureMessage),
	}
}

// IsReady reports whether a turn may be finalized: a room is named, the date and
// times parse as a booking would parse them, and the reply poses no question.
func IsReady(slots domain.ExtractedSlots, reply string) bool {
	if isBlank(slots.RoomName) || isBlank(slots.Date) || isBlank(slots.StartTime) {
		return false
	}
	if _, err := domain.ParseDate(*slots.Date); err != nil {
		return false
	}
	if _, err := domain.ParseClock(*slots.StartTime); err != nil {
		return false
	}
	if !isBlank(slots.EndTime) {
		if _, err := domain.ParseClock(*slots.EndTime); err != nil {
			return false
		}
	}
	return !asksQuestion(reply)
}

// asksQuestion is the readiness heuristic: any question mark counts as a question.
func asksQuestion(reply string) bool {
	return strings.Contains(reply, "?")
}

// replyText picks what the user sees: the clarification, else the model's message,
// else a summary of what is known.
func replyText(ex domain.Extraction) string {
	if ex.Clarification != "" {
		return ex.Clarification
	}
	if ex.Message != "" {
		return ex.Message
	}
	return summarizeSlots(ex.Slots)
}

func summarizeSlots(s domain.ExtractedSlots) string {
	var missing []string
	if isBlank(s.RoomName) {
		missing = append(missing, "room")
	}
	if isBlank(s.Date) {
		missing = append(missing, "date")
	}
	if isBlank(s.StartTime) {
		missing = append(missing, "start time")
	}
	if len(missing) > 0 {
		return "Please tell me the " + strings.Join(missing, " and ") + " for your booking."
	}
	summary := fmt.Sprintf("Ready to book %s on %s at %s", *s.RoomName, *s.Date, *s.StartTime)
	if !isBlank(s.EndTime) {
		summary = fmt.Sprintf("Ready to book %s on %s from %s to %s", *s.RoomName, *s.Date, *s.StartTime, *s.EndTime)
	}
	return summary + "."
}

func extendHistory(history []domain.ChatTurn, message, reply string) []domain.ChatTurn {
	out := make([]domain.ChatTurn, 0, len(history)+2)
	out = append(out, history...)
	return append(out,
		domain.ChatTurn{Role: domain.RoleUser, Content: message},
		domain.ChatTurn{Role: domain.RoleAssistant, Content: reply},
	)
}
