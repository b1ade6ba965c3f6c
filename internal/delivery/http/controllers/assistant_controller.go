package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"roombooking/internal/delivery/http/helpers"
	"roombooking/internal/domain"
	"roombooking/internal/session"
)

// ParseRequest is the request body for POST /api/bookings/parse.
type ParseRequest struct {
	Text string `json:"text"`
}

// Validate implements Validator.
func (p ParseRequest) Validate() []string {
	if strings.TrimSpace(p.Text) == "" {
		return []string{"text is required"}
	}
	return nil
}

// ChatRequest is the request body for POST /api/assistant/chat. A client either sends
// its own history or a session_id returned by an earlier turn; history wins when both are set.
type ChatRequest struct {
	Message   string            `json:"message"`
	History   []domain.ChatTurn `json:"history"`
	SessionID string            `json:"session_id"`
}

// Validate implements Validator.
func (c ChatRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Message) == "" {
		errs = append(errs, "message is required")
	}
	for i, turn := range c.History {
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			errs = append(errs, fmt.Sprintf("history[%d].role must be user or assistant", i))
		}
	}
	return errs
}

// ChatResponse is the data for POST /api/assistant/chat.
type ChatResponse struct {
	*domain.ConversationResult
	SessionID string `json:"session_id,omitempty"`
}

// ChatSuccessResponse is the success response envelope for POST /api/assistant/chat (200).
type ChatSuccessResponse struct {
	Data  ChatResponse      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ParseSuccessResponse is the success response envelope for POST /api/bookings/parse (200).
type ParseSuccessResponse struct {
	Data  *domain.ConversationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ConfirmRequest is the request body for POST /api/assistant/confirm. booked_by and
// title override the values the assistant extracted. Missing slots are reported by the
// booking service.
type ConfirmRequest struct {
	BookingData domain.ExtractedSlots `json:"booking_data"`
	BookedBy    string                `json:"booked_by"`
	Title       string                `json:"title"`
}

// ResetSessionResponse is the data for DELETE /api/assistant/sessions/{sessionID}.
type ResetSessionResponse struct {
	Message string `json:"message"`
}

// ResetSessionSuccessResponse is the success response envelope for DELETE /api/assistant/sessions/{sessionID} (200).
type ResetSessionSuccessResponse struct {
	Data  ResetSessionResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type AssistantController struct {
	Logger    *zap.Logger
	Assistant domain.ConversationService
	Rooms     domain.RoomService
	Bookings  domain.BookingService
	Sessions  *session.Store
}

func NewAssistantController(logger *zap.Logger, assistant domain.ConversationService, rooms domain.RoomService, bookings domain.BookingService, sessions *session.Store) *AssistantController {
	return &AssistantController{
		Logger:    logger,
		Assistant: assistant,
		Rooms:     rooms,
		Bookings:  bookings,
		Sessions:  sessions,
	}
}

// ParseBooking godoc
// @Summary Parse a booking request
// @Description Extracts booking details from one free-text request without keeping any conversation state.
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body ParseRequest true "Free-text request"
// @Success 200 {object} controllers.ParseSuccessResponse "data contains the extraction; degraded is true when the model output could not be used"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bookings/parse [post]
func (c *AssistantController) ParseBooking(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rooms, err := c.Rooms.List(r.Context())
	if err != nil {
		internalError(c.Logger, w, r, err)
		return
	}
	result := c.Assistant.ParseOnce(r.Context(), req.Text, domain.Summaries(rooms))
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// Chat godoc
// @Summary Talk to the booking assistant
// @Description Runs one conversational turn. ready is true once room, date and start time are known and the reply is not a question.
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Message with client history or a session id"
// @Success 200 {object} controllers.ChatSuccessResponse "data contains the turn result and the updated history"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/assistant/chat [post]
func (c *AssistantController) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rooms, err := c.Rooms.List(r.Context())
	if err != nil {
		internalError(c.Logger, w, r, err)
		return
	}
	summaries := domain.Summaries(rooms)

	if req.History != nil || c.Sessions == nil {
		result := c.Assistant.Converse(r.Context(), req.Message, req.History, summaries)
		helpers.WriteJSONSuccess(w, http.StatusOK, ChatResponse{ConversationResult: result})
		return
	}

	sess, err := c.Sessions.Acquire(r.Context(), req.SessionID)
	if err != nil {
		internalError(c.Logger, w, r, err)
		return
	}
	defer sess.Release()
	result := c.Assistant.Converse(r.Context(), req.Message, sess.History(), summaries)
	if err := sess.Save(r.Context(), result.History); err != nil {
		c.Logger.Warn("assistant session not saved", zap.String("session_id", sess.ID), zap.Error(err))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ChatResponse{ConversationResult: result, SessionID: sess.ID})
}

// ConfirmBooking godoc
// @Summary Book what the assistant extracted
// @Description Creates a booking from assistant slots. The room is resolved by name or by minimum capacity and a missing end time defaults to one hour after the start.
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body ConfirmRequest true "Slots returned by the assistant"
// @Success 201 {object} controllers.BookingSuccessResponse "data contains the created booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/assistant/confirm [post]
func (c *AssistantController) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slots := req.BookingData
	if s := strings.TrimSpace(req.BookedBy); s != "" {
		slots.BookedBy = &s
	}
	if s := strings.TrimSpace(req.Title); s != "" {
		slots.Title = &s
	}
	booking, err := c.Bookings.CreateFromSlots(r.Context(), slots)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		internalError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// ResetSession godoc
// @Summary Forget an assistant session
// @Description Drops the server-held history of a chat session. Unknown or expired ids are accepted.
// @Tags assistant
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} controllers.ResetSessionSuccessResponse "data.message confirms the reset"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/assistant/sessions/{sessionID} [delete]
func (c *AssistantController) ResetSession(w http.ResponseWriter, r *http.Request) {
	if c.Sessions == nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "sessions are not enabled")
		return
	}
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	if err := c.Sessions.Delete(r.Context(), sessionID); err != nil {
		internalError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ResetSessionResponse{Message: "Session reset"})
}
