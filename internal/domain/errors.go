package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for room and booking operations.
var (
	ErrNotFound        = errors.New("not found")
	ErrRoomNotFound    = fmt.Errorf("room %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrConflict        = errors.New("booking conflict")

	ErrInvalidTimeRange  = errors.New("end time must be after start time")
	ErrPastDate          = errors.New("booking date cannot be in the past")
	ErrMissingRequester  = errors.New("booked_by is required")
	ErrIncompleteBooking = errors.New("booking details are incomplete")
)

// Validation error codes, one per ValidationError cause.
const (
	CodeInvalidTimeRange  = "invalid_time_range"
	CodePastDate          = "past_date"
	CodeMissingRequester  = "missing_requester"
	CodeIncompleteBooking = "incomplete_booking"
)

// ValidationError reports a candidate booking that is structurally or semantically invalid.
// It unwraps to one of the validation sentinels so callers can use errors.Is.
type ValidationError struct {
	Code string
	Err  error
}

// NewValidationError returns a ValidationError with the given code and cause.
func NewValidationError(code string, err error) *ValidationError {
	return &ValidationError{Code: code, Err: err}
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError reports that a candidate collides with an existing booking of the same room.
type ConflictError struct {
	Existing *Booking
}

func (e *ConflictError) Error() string {
	if e.Existing == nil {
		return "room is already booked"
	}
	return fmt.Sprintf("room is already booked from %s to %s", e.Existing.StartTime, e.Existing.EndTime)
}

// Is makes errors.Is(err, ErrConflict) true for every ConflictError.
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
