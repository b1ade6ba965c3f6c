package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"roombooking/internal/domain"
	"roombooking/internal/metrics"
)

// DefaultBookingDuration is used when an assistant booking names no end time.
const DefaultBookingDuration = time.Hour

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type bookingService struct {
	bookingRepo    domain.BookingRepository
	roomRepo       domain.RoomRepository
	validator      *BookingValidator
	conflicts      *ConflictChecker
	emailService   domain.EmailService
	logger         *zap.Logger
	contextTimeout time.Duration
}

// NewBookingService returns a BookingService. emailService may be nil; emails are
// best effort and never fail a booking operation.
func NewBookingService(
	bookingRepo domain.BookingRepository,
	roomRepo domain.RoomRepository,
	validator *BookingValidator,
	emailService domain.EmailService,
	logger *zap.Logger,
	timeout time.Duration,
) domain.BookingService {
	if validator == nil {
		validator = NewBookingValidator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		roomRepo:       roomRepo,
		validator:      validator,
		conflicts:      NewConflictChecker(bookingRepo),
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// Create validates b, checks its room and slot, and stores it. The returned booking
// carries the assigned ID and the room name.
func (s *bookingService) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	b.BookedBy = strings.TrimSpace(b.BookedBy)
	b.Title = strings.TrimSpace(b.Title)

	if err := s.validator.Validate(b); err != nil {
		s.reject(err)
		return nil, err
	}

	room, err := s.roomRepo.GetByID(ctx, b.RoomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.reject(domain.ErrRoomNotFound)
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}

	if err := s.conflicts.Check(ctx, b, ""); err != nil {
		s.reject(err)
		return nil, err
	}

	// The repository repeats the overlap check atomically with the insert,
	// so a concurrent writer still surfaces as a conflict here.
	if err := s.bookingRepo.Create(ctx, b); err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			s.reject(err)
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	b.RoomName = room.Name
	metrics.BookingsCreated.Inc()

	s.notify(ctx, b, s.sendConfirmation)
	return b, nil
}

// CreateFromSlots turns a ready assistant extraction into a booking. The room is
// resolved from the catalogue by name or capacity requirement, and a missing end
// time defaults to one hour after the start.
func (s *bookingService) CreateFromSlots(ctx context.Context, slots domain.ExtractedSlots) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var missing []string
	if isBlank(slots.RoomName) && (slots.RoomRequirements == nil || slots.RoomRequirements.MinCapacity == nil) {
		missing = append(missing, "room")
	}
	if isBlank(slots.Date) {
		missing = append(missing, "date")
	}
	if isBlank(slots.StartTime) {
		missing = append(missing, "start time")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(domain.CodeIncompleteBooking,
			fmt.Errorf("%w: missing %s", domain.ErrIncompleteBooking, strings.Join(missing, ", ")))
	}

	date, err := domain.ParseDate(*slots.Date)
	if err != nil {
		return nil, domain.NewValidationError(domain.CodeIncompleteBooking,
			fmt.Errorf("%w: invalid date %q", domain.ErrIncompleteBooking, *slots.Date))
	}
	start, err := domain.ParseClock(*slots.StartTime)
	if err != nil {
		return nil, domain.NewValidationError(domain.CodeIncompleteBooking,
			fmt.Errorf("%w: %v", domain.ErrIncompleteBooking, err))
	}
	var end civil.Time
	if isBlank(slots.EndTime) {
		t, ok := domain.AddToClock(start, DefaultBookingDuration)
		if !ok {
			return nil, domain.NewValidationError(domain.CodeInvalidTimeRange, domain.ErrInvalidTimeRange)
		}
		end = t
	} else if end, err = domain.ParseClock(*slots.EndTime); err != nil {
		return nil, domain.NewValidationError(domain.CodeIncompleteBooking,
			fmt.Errorf("%w: %v", domain.ErrIncompleteBooking, err))
	}

	rooms, err := s.roomRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	room := ResolveRoom(rooms, slots.RoomName, slots.RoomRequirements)
	if room == nil {
		return nil, domain.ErrRoomNotFound
	}

	b := domain.NewBooking(room.ID, deref(slots.Title), deref(slots.BookedBy), date, start, end)
	return s.Create(ctx, b)
}

// Cancel deletes the booking with the given id. It returns domain.ErrBookingNotFound
// when no such booking exists.
func (s *bookingService) Cancel(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrBookingNotFound
		}
		return false, fmt.Errorf("get booking: %w", err)
	}

	deleted, err := s.bookingRepo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete booking: %w", err)
	}
	if !deleted {
		return false, domain.ErrBookingNotFound
	}
	metrics.BookingsCancelled.Inc()

	s.notify(ctx, b, s.sendCancellation)
	return true, nil
}

// List returns the bookings matching filter ordered by date then start time,
// and the total count before pagination.
func (s *bookingService) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	bookings, total, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, total, nil
}

func (s *bookingService) reject(err error) {
	reason := "other"
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		reason = ve.Code
	case errors.Is(err, domain.ErrConflict):
		reason = "conflict"
	case errors.Is(err, domain.ErrNotFound):
		reason = "room_not_found"
	}
	metrics.BookingsRejected.WithLabelValues(reason).Inc()
}

// notify sends a booking email when the requester looks like an email address.
func (s *bookingService) notify(ctx context.Context, b *domain.Booking, send func(context.Context, *domain.BookingEmailData) error) {
	if s.emailService == nil || !emailRegexp.MatchString(b.BookedBy) {
		return
	}
	data := &domain.BookingEmailData{
		Email:     b.BookedBy,
		BookingID: b.ID,
		RoomName:  b.RoomName,
		Title:     b.Title,
		Date:      b.BookingDate.String(),
		StartTime: domain.FormatClock(b.StartTime),
		EndTime:   domain.FormatClock(b.EndTime),
	}
	if err := send(ctx, data); err != nil {
		s.logger.Warn("booking email not sent", zap.String("booking_id", b.ID), zap.Error(err))
	}
}

func (s *bookingService) sendConfirmation(ctx context.Context, data *domain.BookingEmailData) error {
	return s.emailService.SendBookingConfirmation(ctx, data)
}

func (s *bookingService) sendCancellation(ctx context.Context, data *domain.BookingEmailData) error {
	return s.emailService.SendBookingCancellation(ctx, data)
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
