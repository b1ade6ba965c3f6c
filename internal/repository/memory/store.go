// Package memory is an in-process room catalogue and booking store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"roombooking/internal/domain"
)

// Store keeps rooms and bookings in memory. One mutex guards both maps, which makes
// the overlap check and the insert in Create atomic.
type Store struct {
	mu       sync.RWMutex
	rooms    map[string]*domain.Room
	bookings map[string]*domain.Booking
	// byRoomDate indexes bookings so overlap checks only see one room's day.
	byRoomDate map[roomDateKey]map[string]*domain.Booking
	now        func() time.Time
}

type roomDateKey struct {
	roomID string
	date   civil.Date
}

func keyOf(b *domain.Booking) roomDateKey {
	return roomDateKey{roomID: b.RoomID, date: b.BookingDate}
}

// NewStore returns a Store seeded with rooms. Rooms without an ID get one.
func NewStore(rooms ...*domain.Room) *Store {
	s := &Store{
		rooms:      make(map[string]*domain.Room),
		bookings:   make(map[string]*domain.Booking),
		byRoomDate: make(map[roomDateKey]map[string]*domain.Booking),
		now:        time.Now,
	}
	for _, r := range rooms {
		s.AddRoom(r)
	}
	return s
}

// DefaultRooms is the catalogue used when the store is not seeded explicitly.
func DefaultRooms() []*domain.Room {
	now := time.Now()
	return []*domain.Room{
		domain.NewRoom("Conference Room A", 10, []string{"projector", "whiteboard", "video_conference"}, now),
		domain.NewRoom("Board Room", 20, []string{"projector", "video_conference", "catering"}, now),
		domain.NewRoom("Meeting Room 1", 4, []string{"whiteboard"}, now),
		domain.NewRoom("Huddle Space", 8, []string{"tv_screen"}, now),
	}
}

// AddRoom stores a copy of room and returns its ID.
func (s *Store) AddRoom(room *domain.Room) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *room
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.rooms[cp.ID] = &cp
	room.ID = cp.ID
	return cp.ID
}

// Rooms returns a RoomRepository view of the store.
func (s *Store) Rooms() domain.RoomRepository { return roomRepo{s} }

// Bookings returns a BookingRepository view of the store.
func (s *Store) Bookings() domain.BookingRepository { return bookingRepo{s} }

type roomRepo struct{ s *Store }

func (r roomRepo) List(ctx context.Context) ([]*domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Room, 0, len(r.s.rooms))
	for _, room := range r.s.rooms {
		cp := *room
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r roomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) FindOverlapping(ctx context.Context, roomID string, date civil.Date, start, end civil.Time, excludeID string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.overlapping(domain.NewBooking(roomID, "", "", date, start, end), excludeID), nil
}

func (r bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[b.RoomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if existing := r.s.overlapping(b, ""); existing != nil {
		return &domain.ConflictError{Existing: existing}
	}
	b.ID = uuid.NewString()
	b.CreatedAt = r.s.now()
	b.RoomName = room.Name
	cp := *b
	r.s.bookings[b.ID] = &cp
	k := keyOf(&cp)
	if r.s.byRoomDate[k] == nil {
		r.s.byRoomDate[k] = make(map[string]*domain.Booking)
	}
	r.s.byRoomDate[k][cp.ID] = &cp
	return nil
}

func (r bookingRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return false, nil
	}
	delete(r.s.bookings, id)
	k := keyOf(b)
	delete(r.s.byRoomDate[k], id)
	if len(r.s.byRoomDate[k]) == 0 {
		delete(r.s.byRoomDate, k)
	}
	return true, nil
}

func (r bookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.s.withRoomName(b), nil
}

func (r bookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Booking
	for _, b := range r.s.bookings {
		if filter.RoomID != "" && !strings.EqualFold(b.RoomID, filter.RoomID) {
			continue
		}
		if filter.Date != nil && b.BookingDate != *filter.Date {
			continue
		}
		out = append(out, r.s.withRoomName(b))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.BookingDate != b.BookingDate {
			return a.BookingDate.Before(b.BookingDate)
		}
		if c := domain.CompareTimes(a.StartTime, b.StartTime); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	lo, hi := filter.Pagination.Window(len(out))
	return out[lo:hi], len(out), nil
}

// overlapping must be called with s.mu held. It only visits bookings of the
// candidate's room on the candidate's date.
func (s *Store) overlapping(candidate *domain.Booking, excludeID string) *domain.Booking {
	for id, b := range s.byRoomDate[keyOf(candidate)] {
		if id == excludeID {
			continue
		}
		if candidate.Overlaps(b) {
			return s.withRoomName(b)
		}
	}
	return nil
}

func (s *Store) withRoomName(b *domain.Booking) *domain.Booking {
	cp := *b
	if room, ok := s.rooms[b.RoomID]; ok {
		cp.RoomName = room.Name
	}
	return &cp
}
