package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roombooking/internal/delivery/http/helpers"
	"roombooking/internal/domain"
)

// testLogger discards output so tests don't assert on logs.
var testLogger = zap.NewNop()

type fakeRoomService struct {
	rooms   []*domain.Room
	listErr error
	getErr  error
}

func (f *fakeRoomService) List(_ context.Context) ([]*domain.Room, error) {
	return f.rooms, f.listErr
}

func (f *fakeRoomService) GetByID(_ context.Context, id string) (*domain.Room, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrRoomNotFound
}

type fakeBookingService struct {
	createResult *domain.Booking
	createErr    error
	cancelResult bool
	cancelErr    error
	listResult   []*domain.Booking
	listTotal    int
	listErr      error

	lastCreate       *domain.Booking
	lastSlots        domain.ExtractedSlots
	lastCancelID     string
	lastFilter       domain.BookingFilter
	createFromSlotsN int
}

func (f *fakeBookingService) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.lastCreate = b
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createResult != nil {
		return f.createResult, nil
	}
	out := *b
	out.ID = "bk-001"
	return &out, nil
}

func (f *fakeBookingService) CreateFromSlots(_ context.Context, slots domain.ExtractedSlots) (*domain.Booking, error) {
	f.createFromSlotsN++
	f.lastSlots = slots
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeBookingService) Cancel(_ context.Context, id string) (bool, error) {
	f.lastCancelID = id
	return f.cancelResult, f.cancelErr
}

func (f *fakeBookingService) List(_ context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error) {
	f.lastFilter = filter
	return f.listResult, f.listTotal, f.listErr
}

type fakeConversation struct {
	result      *domain.ConversationResult
	lastMessage string
	lastHistory []domain.ChatTurn
	lastRooms   []domain.RoomSummary
	parseCalls  int
}

func (f *fakeConversation) Converse(_ context.Context, message string, history []domain.ChatTurn, rooms []domain.RoomSummary) *domain.ConversationResult {
	f.lastMessage = message
	f.lastHistory = history
	f.lastRooms = rooms
	if f.result != nil {
		return f.result
	}
	h := append(append([]domain.ChatTurn(nil), history...),
		domain.ChatTurn{Role: domain.RoleUser, Content: message},
		domain.ChatTurn{Role: domain.RoleAssistant, Content: "Which date?"},
	)
	return &domain.ConversationResult{Message: "Which date?", Confidence: domain.ConfidenceMedium, History: h}
}

func (f *fakeConversation) ParseOnce(ctx context.Context, text string, rooms []domain.RoomSummary) *domain.ConversationResult {
	f.parseCalls++
	return f.Converse(ctx, text, nil, rooms)
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// decodeData decodes the success envelope of rr into data.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, data any) {
	t.Helper()
	envelope := struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)
	require.NoError(t, json.Unmarshal(envelope.Data, data))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) *helpers.APIError {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error
}

func serve(handler http.HandlerFunc, pattern string, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}
