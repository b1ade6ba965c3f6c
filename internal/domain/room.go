package domain

import (
	"context"
	"time"
)

// Room represents a bookable meeting room
// swagger:model Room
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Amenities []string  `json:"amenities"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRoom returns a new Room with the given fields. ID is typically set by the repository on create.
func NewRoom(name string, capacity int, amenities []string, createdAt time.Time) *Room {
	if amenities == nil {
		amenities = []string{}
	}
	return &Room{
		Name:      name,
		Capacity:  capacity,
		Amenities: amenities,
		CreatedAt: createdAt,
	}
}

// RoomSummary is the part of a room the assistant sees: identity, name and capacity.
type RoomSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// Summary returns the RoomSummary of r.
func (r *Room) Summary() RoomSummary {
	return RoomSummary{ID: r.ID, Name: r.Name, Capacity: r.Capacity}
}

// Summaries maps rooms to their summaries, keeping order.
func Summaries(rooms []*Room) []RoomSummary {
	out := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	return out
}

// RoomRepository defines the interface for the room catalogue
type RoomRepository interface {
	List(ctx context.Context) ([]*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
}

// RoomService exposes the room catalogue to callers
type RoomService interface {
	List(ctx context.Context) ([]*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
}
