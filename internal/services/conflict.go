package services

import (
	"context"
	"fmt"

	"roombooking/internal/domain"
)

// FindConflict returns the first booking in existing that overlaps candidate, or nil.
// The booking whose ID equals excludeID is skipped, which lets an update ignore itself.
func FindConflict(existing []*domain.Booking, candidate *domain.Booking, excludeID string) *domain.Booking {
	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if candidate.Overlaps(b) {
			return b
		}
	}
	return nil
}

// ConflictChecker answers conflict queries against the booking store.
type ConflictChecker struct {
	bookings domain.BookingRepository
}

// NewConflictChecker returns a ConflictChecker backed by repo.
func NewConflictChecker(repo domain.BookingRepository) *ConflictChecker {
	return &ConflictChecker{bookings: repo}
}

// Check returns a *domain.ConflictError naming the colliding booking when candidate
// overlaps an existing booking of its room, and nil when the slot is free.
func (c *ConflictChecker) Check(ctx context.Context, candidate *domain.Booking, excludeID string) error {
	existing, err := c.bookings.FindOverlapping(ctx, candidate.RoomID, candidate.BookingDate, candidate.StartTime, candidate.EndTime, excludeID)
	if err != nil {
		return fmt.Errorf("find overlapping booking: %w", err)
	}
	if existing != nil {
		return &domain.ConflictError{Existing: existing}
	}
	return nil
}
