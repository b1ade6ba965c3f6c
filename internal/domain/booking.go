package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Booking reserves a room on one date for a half-open [StartTime, EndTime) window.
// Dates and times are naive local values; no time zone is attached.
// swagger:model Booking
type Booking struct {
	ID          string     `json:"id"`
	RoomID      string     `json:"room_id"`
	RoomName    string     `json:"room_name,omitempty"`
	Title       string     `json:"title,omitempty"`
	BookedBy    string     `json:"booked_by"`
	BookingDate civil.Date `json:"booking_date" swaggertype:"string" example:"2030-01-01"`
	StartTime   civil.Time `json:"start_time" swaggertype:"string" example:"10:00:00"`
	EndTime     civil.Time `json:"end_time" swaggertype:"string" example:"11:00:00"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewBooking returns a new Booking with the given fields. ID and CreatedAt are set by the repository on create.
func NewBooking(roomID, title, bookedBy string, date civil.Date, start, end civil.Time) *Booking {
	return &Booking{
		RoomID:      roomID,
		Title:       title,
		BookedBy:    bookedBy,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
	}
}

// Overlaps reports whether b and o hold the same room on the same date for intersecting windows.
// Back-to-back bookings (one ends when the other starts) do not overlap.
func (b *Booking) Overlaps(o *Booking) bool {
	if b.RoomID != o.RoomID || b.BookingDate != o.BookingDate {
		return false
	}
	return Overlaps(b.StartTime, b.EndTime, o.StartTime, o.EndTime)
}

// Overlaps reports whether the half-open windows [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd civil.Time) bool {
	return CompareTimes(aStart, bEnd) < 0 && CompareTimes(aEnd, bStart) > 0
}

// CompareTimes returns -1, 0 or +1 as a is before, equal to or after b.
func CompareTimes(a, b civil.Time) int {
	da, db := sinceMidnight(a), sinceMidnight(b)
	switch {
	case da < db:
		return -1
	case da > db:
		return 1
	}
	return 0
}

func sinceMidnight(t civil.Time) time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Nanosecond)
}

// BookingFilter narrows a booking listing. Zero values mean "any".
type BookingFilter struct {
	RoomID     string
	Date       *civil.Date
	Pagination PaginationParams
}

// BookingRepository defines the interface for booking storage.
// Create must make the overlap check and the insert atomic: it returns ErrRoomNotFound when the
// room does not exist and a *ConflictError when an overlapping booking is already stored.
type BookingRepository interface {
	FindOverlapping(ctx context.Context, roomID string, date civil.Date, start, end civil.Time, excludeID string) (*Booking, error)
	Create(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*Booking, int, error)
}

// BookingService defines the business logic for creating, cancelling and listing bookings
type BookingService interface {
	Create(ctx context.Context, booking *Booking) (*Booking, error)
	CreateFromSlots(ctx context.Context, slots ExtractedSlots) (*Booking, error)
	Cancel(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter BookingFilter) ([]*Booking, int, error)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (civil.Date, error) {
	return civil.ParseDate(strings.TrimSpace(s))
}

// clockLayouts are the wall-clock formats accepted from callers and the assistant.
var clockLayouts = []string{"15:04", "15:04:05", "15:04:05.999999999"}

// ParseClock parses an HH:MM or HH:MM:SS wall-clock time.
func ParseClock(s string) (civil.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.TimeOf(t), nil
		}
	}
	return civil.Time{}, fmt.Errorf("invalid time %q: want HH:MM", s)
}

// FormatClock renders t as HH:MM, the format used in assistant slots.
func FormatClock(t civil.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// AddToClock returns t+d. ok is false when the result leaves the day t belongs to.
func AddToClock(t civil.Time, d time.Duration) (civil.Time, bool) {
	total := sinceMidnight(t) + d
	if total < 0 || total >= 24*time.Hour {
		return civil.Time{}, false
	}
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	return civil.TimeOf(base.Add(total)), true
}
