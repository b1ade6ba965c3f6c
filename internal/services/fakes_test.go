package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"

	"roombooking/internal/domain"
)

var testToday = civil.Date{Year: 2029, Month: time.December, Day: 31}

func fixedToday() civil.Date { return testToday }

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func tm(h, m int) civil.Time { return civil.Time{Hour: h, Minute: m} }

// fakeRoomRepo is an in-memory RoomRepository for tests.
type fakeRoomRepo struct {
	rooms []*domain.Room
	err   error
}

func newFakeRoomRepo(rooms ...*domain.Room) *fakeRoomRepo {
	return &fakeRoomRepo{rooms: rooms}
}

func (f *fakeRoomRepo) List(ctx context.Context) ([]*domain.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rooms, nil
}

func (f *fakeRoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeBookingRepo is an in-memory BookingRepository for tests.
type fakeBookingRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Booking
	nextID    int
	createErr error
	findErr   error
	// skipCreateCheck makes Create skip its own overlap check, to observe the service's pre-check.
	skipCreateCheck bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[string]*domain.Booking), nextID: 1}
}

func (f *fakeBookingRepo) all() []*domain.Booking {
	out := make([]*domain.Booking, 0, len(f.byID))
	for _, b := range f.byID {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeBookingRepo) FindOverlapping(ctx context.Context, roomID string, date civil.Date, start, end civil.Time, excludeID string) (*domain.Booking, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	candidate := domain.NewBooking(roomID, "", "", date, start, end)
	return FindConflict(f.all(), candidate, excludeID), nil
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.skipCreateCheck {
		if existing := FindConflict(f.all(), b, ""); existing != nil {
			return &domain.ConflictError{Existing: existing}
		}
	}
	b.ID = fmt.Sprintf("bk-%03d", f.nextID)
	f.nextID++
	b.CreatedAt = time.Now()
	f.byID[b.ID] = b
	return nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Booking
	for _, b := range f.all() {
		if filter.RoomID != "" && b.RoomID != filter.RoomID {
			continue
		}
		if filter.Date != nil && b.BookingDate != *filter.Date {
			continue
		}
		out = append(out, b)
	}
	lo, hi := filter.Pagination.Window(len(out))
	return out[lo:hi], len(out), nil
}

// fakeEmailService records booking emails.
type fakeEmailService struct {
	confirmations []*domain.BookingEmailData
	cancellations []*domain.BookingEmailData
	err           error
}

func (f *fakeEmailService) SendBookingConfirmation(ctx context.Context, data *domain.BookingEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, data)
	return nil
}

func (f *fakeEmailService) SendBookingCancellation(ctx context.Context, data *domain.BookingEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.cancellations = append(f.cancellations, data)
	return nil
}

// generatorCall captures one Generate invocation.
type generatorCall struct {
	systemPrompt string
	history      []domain.ChatTurn
	message      string
}

// scriptedGenerator replies with its scripted responses in order.
type scriptedGenerator struct {
	replies []string
	err     error
	calls   []generatorCall
}

func (g *scriptedGenerator) Generate(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	g.calls = append(g.calls, generatorCall{systemPrompt: systemPrompt, history: history, message: message})
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", errors.New("scripted generator exhausted")
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return reply, nil
}
