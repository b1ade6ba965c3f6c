package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(h, m int) civil.Time { return civil.Time{Hour: h, Minute: m} }

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		aStart, aEnd civil.Time
		bStart, bEnd civil.Time
		want         bool
	}{
		{"identical", clock(10, 0), clock(11, 0), clock(10, 0), clock(11, 0), true},
		{"partial head", clock(9, 30), clock(10, 30), clock(10, 0), clock(11, 0), true},
		{"partial tail", clock(10, 30), clock(11, 30), clock(10, 0), clock(11, 0), true},
		{"contained", clock(10, 15), clock(10, 45), clock(10, 0), clock(11, 0), true},
		{"containing", clock(9, 0), clock(12, 0), clock(10, 0), clock(11, 0), true},
		{"back to back after", clock(11, 0), clock(12, 0), clock(10, 0), clock(11, 0), false},
		{"back to back before", clock(9, 0), clock(10, 0), clock(10, 0), clock(11, 0), false},
		{"disjoint", clock(14, 0), clock(15, 0), clock(10, 0), clock(11, 0), false},
		{"one second overlap", clock(10, 0), civil.Time{Hour: 10, Second: 1}, clock(9, 0), civil.Time{Hour: 10, Second: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd), "overlap must be symmetric")
		})
	}
}

func TestBooking_Overlaps(t *testing.T) {
	day := civil.Date{Year: 2030, Month: time.January, Day: 1}
	base := NewBooking("room-1", "", "alice", day, clock(10, 0), clock(11, 0))

	t.Run("same room same date", func(t *testing.T) {
		other := NewBooking("room-1", "", "bob", day, clock(10, 30), clock(11, 30))
		assert.True(t, base.Overlaps(other))
	})
	t.Run("other room", func(t *testing.T) {
		other := NewBooking("room-2", "", "bob", day, clock(10, 0), clock(11, 0))
		assert.False(t, base.Overlaps(other))
	})
	t.Run("other date", func(t *testing.T) {
		other := NewBooking("room-1", "", "bob", day.AddDays(1), clock(10, 0), clock(11, 0))
		assert.False(t, base.Overlaps(other))
	})
}

func TestCompareTimes(t *testing.T) {
	assert.Equal(t, -1, CompareTimes(clock(9, 59), clock(10, 0)))
	assert.Equal(t, 0, CompareTimes(clock(10, 0), clock(10, 0)))
	assert.Equal(t, 1, CompareTimes(clock(23, 0), clock(1, 0)))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    civil.Time
		wantErr bool
	}{
		{in: "10:00", want: clock(10, 0)},
		{in: " 09:30 ", want: clock(9, 30)},
		{in: "14:15:30", want: civil.Time{Hour: 14, Minute: 15, Second: 30}},
		{in: "25:00", wantErr: true},
		{in: "2pm", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddToClock(t *testing.T) {
	got, ok := AddToClock(clock(10, 0), time.Hour)
	require.True(t, ok)
	assert.Equal(t, clock(11, 0), got)
	assert.Equal(t, "11:00", FormatClock(got))

	_, ok = AddToClock(clock(23, 30), time.Hour)
	assert.False(t, ok, "crossing midnight leaves the day")
}

func TestConflictError(t *testing.T) {
	existing := &Booking{StartTime: clock(10, 0), EndTime: clock(11, 0)}
	var err error = fmt.Errorf("create: %w", &ConflictError{Existing: existing})

	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "room is already booked from 10:00:00 to 11:00:00")

	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Same(t, existing, ce.Existing)
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("validate: %w", NewValidationError(CodePastDate, ErrPastDate))
	assert.True(t, IsValidation(err))
	assert.True(t, errors.Is(err, ErrPastDate))
	assert.False(t, IsValidation(ErrConflict))
	assert.True(t, errors.Is(ErrRoomNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrBookingNotFound, ErrNotFound))
}

func TestPaginationParams_Window(t *testing.T) {
	tests := []struct {
		name   string
		p      PaginationParams
		n      int
		lo, hi int
	}{
		{"no limit", PaginationParams{}, 7, 0, 7},
		{"first page", PaginationParams{Page: 1, PageSize: 3}, 7, 0, 3},
		{"last partial page", PaginationParams{Page: 3, PageSize: 3}, 7, 6, 7},
		{"beyond end", PaginationParams{Page: 5, PageSize: 3}, 7, 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.p.Window(tt.n)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}
