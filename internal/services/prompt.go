package services

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"

	"cloud.google.com/go/civil"

	"roombooking/internal/domain"
)

//go:embed templates/booking_assistant.tmpl
var promptFS embed.FS

var assistantPrompt = template.Must(template.ParseFS(promptFS, "templates/booking_assistant.tmpl"))

type promptData struct {
	Rooms                  []domain.RoomSummary
	Today                  string
	Weekday                string
	DefaultDurationMinutes int
}

// PromptBuilder renders the assistant system prompt. The output depends only on
// the rooms and the date passed in, so identical inputs give identical prompts.
type PromptBuilder struct {
	tmpl            *template.Template
	defaultDuration time.Duration
}

// NewPromptBuilder returns a PromptBuilder that tells the model to assume defaultDuration
// when no end time is given. A non-positive duration uses DefaultBookingDuration.
func NewPromptBuilder(defaultDuration time.Duration) *PromptBuilder {
	if defaultDuration <= 0 {
		defaultDuration = DefaultBookingDuration
	}
	return &PromptBuilder{tmpl: assistantPrompt, defaultDuration: defaultDuration}
}

// Build renders the system prompt listing rooms in the given order, anchored on today.
func (p *PromptBuilder) Build(rooms []domain.RoomSummary, today civil.Date) (string, error) {
	data := promptData{
		Rooms:                  rooms,
		Today:                  today.String(),
		Weekday:                today.In(time.UTC).Weekday().String(),
		DefaultDurationMinutes: int(p.defaultDuration / time.Minute),
	}
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render assistant prompt: %w", err)
	}
	return buf.String(), nil
}
