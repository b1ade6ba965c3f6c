package domain

import "context"

// Role identifies who authored a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message of a conversation history. The caller owns the history.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Confidence is the extraction confidence reported by the model.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// RoomRequirements constrains the room when none is named explicitly.
type RoomRequirements struct {
	MinCapacity *int `json:"min_capacity,omitempty"`
}

// ExtractedSlots is a partial booking candidate. A nil field was not provided.
// Date is YYYY-MM-DD; StartTime and EndTime are HH:MM.
type ExtractedSlots struct {
	RoomName         *string           `json:"room_name"`
	RoomRequirements *RoomRequirements `json:"room_requirements"`
	Date             *string           `json:"date"`
	StartTime        *string           `json:"start_time"`
	EndTime          *string           `json:"end_time"`
	Title            *string           `json:"title"`
	BookedBy         *string           `json:"booked_by"`
}

// Extraction is the typed result of normalizing raw model output.
// When Degraded is set the model output could not be recovered: Slots is empty,
// Confidence is low and RawText keeps the original text.
type Extraction struct {
	Slots         ExtractedSlots
	Message       string
	Clarification string
	Confidence    Confidence
	Degraded      bool
	RawText       string
	Error         string
}

// ConversationResult is the outcome of one conversational turn. It is always well formed,
// including when the model or its transport failed.
// swagger:model ConversationResult
type ConversationResult struct {
	Message     string         `json:"message"`
	Ready       bool           `json:"ready"`
	BookingData ExtractedSlots `json:"booking_data"`
	Confidence  Confidence     `json:"confidence"`
	Degraded    bool           `json:"degraded"`
	RawText     string         `json:"raw_text,omitempty"`
	Error       string         `json:"error,omitempty"`
	History     []ChatTurn     `json:"history"`
}

// TextGenerator is the language model transport. Its output is untrusted text.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt string, history []ChatTurn, message string) (string, error)
}

// ConversationService runs the booking assistant. It never fails: model and transport
// errors come back as degraded results.
type ConversationService interface {
	Converse(ctx context.Context, message string, history []ChatTurn, rooms []RoomSummary) *ConversationResult
	ParseOnce(ctx context.Context, text string, rooms []RoomSummary) *ConversationResult
}
