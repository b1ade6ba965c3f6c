package helpers

import (
	"errors"
	"net/http"

	"roombooking/internal/domain"
)

// ConflictDetails describes the booking a rejected request collides with.
// swagger:model ConflictDetails
type ConflictDetails struct {
	BookingID string `json:"booking_id,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// WriteDomainError maps booking domain errors to their HTTP status and error code.
// It reports false when err is not a domain error, leaving the response unwritten.
func WriteDomainError(w http.ResponseWriter, err error) bool {
	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		WriteJSONErrorDetails(w, http.StatusUnprocessableEntity, ErrCodeValidation, ve.Error(), map[string]string{"reason": ve.Code})
	case errors.As(err, &ce):
		var details any
		if ce.Existing != nil {
			details = ConflictDetails{
				BookingID: ce.Existing.ID,
				StartTime: ce.Existing.StartTime.String(),
				EndTime:   ce.Existing.EndTime.String(),
			}
		}
		WriteJSONErrorDetails(w, http.StatusConflict, ErrCodeConflict, ce.Error(), details)
	case errors.Is(err, domain.ErrRoomNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "room not found")
	case errors.Is(err, domain.ErrBookingNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "booking not found")
	default:
		return false
	}
	return true
}
