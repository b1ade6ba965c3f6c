package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"roombooking/internal/domain"
)

func newTestBookingService(t *testing.T, rooms *fakeRoomRepo, bookings *fakeBookingRepo, email domain.EmailService) domain.BookingService {
	t.Helper()
	return NewBookingService(bookings, rooms, NewBookingValidator(fixedToday), email, zaptest.NewLogger(t), 5*time.Second)
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	day := civil.Date{Year: 2030, Month: time.January, Day: 1}

	t.Run("success enriches room name", func(t *testing.T) {
		bookings := newFakeBookingRepo()
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), bookings, nil)

		got, err := svc.Create(ctx, domain.NewBooking("r-a", " Planning ", " alice ", day, tm(10, 0), tm(11, 0)))
		require.NoError(t, err)
		require.NotEmpty(t, got.ID)
		assert.Equal(t, "Conference Room A", got.RoomName)
		assert.Equal(t, "alice", got.BookedBy)
		assert.Equal(t, "Planning", got.Title)
		assert.Len(t, bookings.byID, 1)
	})

	t.Run("overlapping booking conflicts", func(t *testing.T) {
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), newFakeBookingRepo(), nil)
		_, err := svc.Create(ctx, domain.NewBooking("r-a", "", "alice", day, tm(10, 0), tm(11, 0)))
		require.NoError(t, err)

		_, err = svc.Create(ctx, domain.NewBooking("r-a", "", "bob", day, tm(10, 30), tm(11, 30)))
		require.Error(t, err)
		var ce *domain.ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, tm(10, 0), ce.Existing.StartTime)
		assert.Equal(t, tm(11, 0), ce.Existing.EndTime)
		assert.Contains(t, err.Error(), "10:00:00 to 11:00:00")
	})

	t.Run("back to back is accepted", func(t *testing.T) {
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), newFakeBookingRepo(), nil)
		_, err := svc.Create(ctx, domain.NewBooking("r-a", "", "alice", day, tm(10, 0), tm(11, 0)))
		require.NoError(t, err)
		_, err = svc.Create(ctx, domain.NewBooking("r-a", "", "bob", day, tm(11, 0), tm(12, 0)))
		require.NoError(t, err)
	})

	t.Run("same slot in another room is accepted", func(t *testing.T) {
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), newFakeBookingRepo(), nil)
		_, err := svc.Create(ctx, domain.NewBooking("r-a", "", "alice", day, tm(10, 0), tm(11, 0)))
		require.NoError(t, err)
		_, err = svc.Create(ctx, domain.NewBooking("r-board", "", "bob", day, tm(10, 0), tm(11, 0)))
		require.NoError(t, err)
	})

	t.Run("conflict detected by store", func(t *testing.T) {
		bookings := newFakeBookingRepo()
		bookings.createErr = &domain.ConflictError{}
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), bookings, nil)
		_, err := svc.Create(ctx, domain.NewBooking("r-a", "", "alice", day, tm(10, 0), tm(11, 0)))
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unknown room", func(t *testing.T) {
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), newFakeBookingRepo(), nil)
		_, err := svc.Create(ctx, domain.NewBooking("nope", "", "alice", day, tm(10, 0), tm(11, 0)))
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("past date", func(t *testing.T) {
		bookings := newFakeBookingRepo()
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), bookings, nil)
		_, err := svc.Create(ctx, domain.NewBooking("r-a", "", "alice", civil.Date{Year: 2020, Month: 1, Day: 1}, tm(10, 0), tm(11, 0)))
		assert.ErrorIs(t, err, domain.ErrPastDate)
		assert.Empty(t, bookings.byID)
	})

	t.Run("room lookup failure is wrapped", func(t *testing.T) {
		rooms := newFakeRoomRepo(testRooms()...)
		rooms.err = errors.New("db down")
		svc := newTestBookingService(t, rooms, newFakeBookingRepo(), nil)
		_, err := svc.Create(ctx, domain.NewBooking("r-a", "", "alice", day, tm(10, 0), tm(11, 0)))
		require.Error(t, err)
		assert.False(t, domain.IsValidation(err))
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_Create_Emails(t *testing.T) {
	ctx := context.Background()
	day := civil.Date{Year: 2030, Month: time.January, Day: 1}

	t.Run("confirmation sent to email requester", func(t *testing.T) {
		email := &fakeEmailService{}
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), newFakeBookingRepo(), email)
		b, err := svc.Create(ctx, domain.NewBooking("r-board", "Review", "alice@example.com", day, tm(9, 0), tm(9, 30)))
		require.NoError(t, err)
		require.Len(t, email.confirmations, 1)
		got := email.confirmations[0]
		assert.Equal(t, "alice@example.com", got.Email)
		assert.Equal(t, b.ID, got.BookingID)
		assert.Equal(t, "Board Room", got.RoomName)
		assert.Equal(t, "2030-01-01", got.Date)
		assert.Equal(t, "09:00", got.StartTime)
		assert.Equal(t, "09:30", got.EndTime)
	})

	t.Run("plain name gets no email", func(t *testing.T) {
		email := &fakeEmailService{}
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), newFakeBookingRepo(), email)
		_, err := svc.Create(ctx, domain.NewBooking("r-board", "", "Alice", day, tm(9, 0), tm(9, 30)))
		require.NoError(t, err)
		assert.Empty(t, email.confirmations)
	})

	t.Run("email failure does not fail booking", func(t *testing.T) {
		email := &fakeEmailService{err: errors.New("ses down")}
		svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), newFakeBookingRepo(), email)
		b, err := svc.Create(ctx, domain.NewBooking("r-board", "", "alice@example.com", day, tm(9, 0), tm(9, 30)))
		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)
	})
}

func TestBookingService_CreateFromSlots(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		slots    domain.ExtractedSlots
		wantErr  error
		wantRoom string
		wantEnd  civil.Time
	}{
		{
			name: "named room with end time",
			slots: domain.ExtractedSlots{
				RoomName: strPtr("board room"), Date: strPtr("2030-01-01"),
				StartTime: strPtr("10:00"), EndTime: strPtr("11:30"), BookedBy: strPtr("alice"),
			},
			wantRoom: "r-board",
			wantEnd:  tm(11, 30),
		},
		{
			name: "missing end defaults to one hour",
			slots: domain.ExtractedSlots{
				RoomName: strPtr("Meeting Room 1"), Date: strPtr("2030-01-01"),
				StartTime: strPtr("14:00"), BookedBy: strPtr("alice"),
			},
			wantRoom: "r-m1",
			wantEnd:  tm(15, 0),
		},
		{
			name: "capacity requirement resolves room",
			slots: domain.ExtractedSlots{
				RoomRequirements: &domain.RoomRequirements{MinCapacity: intPtr(6)},
				Date:             strPtr("2030-01-01"), StartTime: strPtr("10:00"), BookedBy: strPtr("alice"),
			},
			wantRoom: "r-huddle",
			wantEnd:  tm(11, 0),
		},
		{
			name:    "missing start time",
			slots:   domain.ExtractedSlots{RoomName: strPtr("Board Room"), Date: strPtr("2030-01-01"), BookedBy: strPtr("alice")},
			wantErr: domain.ErrIncompleteBooking,
		},
		{
			name:    "unparsable date",
			slots:   domain.ExtractedSlots{RoomName: strPtr("Board Room"), Date: strPtr("tomorrow"), StartTime: strPtr("10:00"), BookedBy: strPtr("alice")},
			wantErr: domain.ErrIncompleteBooking,
		},
		{
			name:    "default duration crossing midnight",
			slots:   domain.ExtractedSlots{RoomName: strPtr("Board Room"), Date: strPtr("2030-01-01"), StartTime: strPtr("23:30"), BookedBy: strPtr("alice")},
			wantErr: domain.ErrInvalidTimeRange,
		},
		{
			name:    "unknown room",
			slots:   domain.ExtractedSlots{RoomName: strPtr("Ballroom"), Date: strPtr("2030-01-01"), StartTime: strPtr("10:00"), BookedBy: strPtr("alice")},
			wantErr: domain.ErrRoomNotFound,
		},
		{
			name: "unknown room with capacity requirement",
			slots: domain.ExtractedSlots{
				RoomName: strPtr("Ballroom"), RoomRequirements: &domain.RoomRequirements{MinCapacity: intPtr(6)},
				Date: strPtr("2030-01-01"), StartTime: strPtr("10:00"), BookedBy: strPtr("alice"),
			},
			wantErr: domain.ErrRoomNotFound,
		},
		{
			name:    "missing requester",
			slots:   domain.ExtractedSlots{RoomName: strPtr("Board Room"), Date: strPtr("2030-01-01"), StartTime: strPtr("10:00")},
			wantErr: domain.ErrMissingRequester,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), newFakeBookingRepo(), nil)
			got, err := svc.CreateFromSlots(ctx, tt.slots)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoom, got.RoomID)
			assert.Equal(t, tt.wantEnd, got.EndTime)
		})
	}
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()
	day := civil.Date{Year: 2030, Month: time.January, Day: 1}

	email := &fakeEmailService{}
	bookings := newFakeBookingRepo()
	svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), bookings, email)

	b, err := svc.Create(ctx, domain.NewBooking("r-a", "", "bob@example.com", day, tm(10, 0), tm(11, 0)))
	require.NoError(t, err)

	ok, err := svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, bookings.byID)
	require.Len(t, email.cancellations, 1)
	assert.Equal(t, b.ID, email.cancellations[0].BookingID)

	ok, err = svc.Cancel(ctx, b.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	// The freed slot can be booked again.
	_, err = svc.Create(ctx, domain.NewBooking("r-a", "", "carol", day, tm(10, 0), tm(11, 0)))
	require.NoError(t, err)
}

func TestBookingService_List(t *testing.T) {
	ctx := context.Background()
	day := civil.Date{Year: 2030, Month: time.January, Day: 1}
	svc := newTestBookingService(t, newFakeRoomRepo(testRooms()...), newFakeBookingRepo(), nil)

	for i, room := range []string{"r-a", "r-a", "r-board"} {
		_, err := svc.Create(ctx, domain.NewBooking(room, "", "alice", day, tm(9+i, 0), tm(10+i, 0)))
		require.NoError(t, err)
	}

	all, total, err := svc.List(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 3, total)

	byRoom, total, err := svc.List(ctx, domain.BookingFilter{RoomID: "r-a", Pagination: domain.PaginationParams{Page: 1, PageSize: 1}})
	require.NoError(t, err)
	assert.Len(t, byRoom, 1)
	assert.Equal(t, 2, total)

	other := day.AddDays(1)
	none, total, err := svc.List(ctx, domain.BookingFilter{Date: &other})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
	assert.Zero(t, total)
}
