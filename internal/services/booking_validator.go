package services

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"roombooking/internal/domain"
)

// Today returns the current local calendar date.
func Today() civil.Date {
	return civil.DateOf(time.Now())
}

// BookingValidator checks a candidate booking before it reaches storage.
// The clock is injected so date rules are testable.
type BookingValidator struct {
	today func() civil.Date
}

// NewBookingValidator returns a validator reading the current date from today.
// A nil today uses the local clock.
func NewBookingValidator(today func() civil.Date) *BookingValidator {
	if today == nil {
		today = Today
	}
	return &BookingValidator{today: today}
}

// Validate returns nil or a *domain.ValidationError. Rules are checked in order
// and the first failure wins: time range, past date, requester.
// Bookings for today are accepted regardless of the current time of day.
func (v *BookingValidator) Validate(b *domain.Booking) error {
	if domain.CompareTimes(b.EndTime, b.StartTime) <= 0 {
		return domain.NewValidationError(domain.CodeInvalidTimeRange, domain.ErrInvalidTimeRange)
	}
	if b.BookingDate.Before(v.today()) {
		return domain.NewValidationError(domain.CodePastDate, domain.ErrPastDate)
	}
	if strings.TrimSpace(b.BookedBy) == "" {
		return domain.NewValidationError(domain.CodeMissingRequester, domain.ErrMissingRequester)
	}
	return nil
}
