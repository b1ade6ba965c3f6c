package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"roombooking/internal/domain"
)

type RoomRepository struct {
	DB *sql.DB
}

func NewRoomRepository(db *sql.DB) domain.RoomRepository {
	return &RoomRepository{DB: db}
}

func (r *RoomRepository) List(ctx context.Context) ([]*domain.Room, error) {
	query := `
		SELECT id, name, capacity, amenities, created_at
		FROM rooms
		ORDER BY name, id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*domain.Room
	for rows.Next() {
		room := &domain.Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, pq.Array(&room.Amenities), &room.CreatedAt); err != nil {
			return nil, err
		}
		if room.Amenities == nil {
			room.Amenities = []string{}
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// GetByID returns domain.ErrNotFound for unknown ids, including ids that are not UUIDs.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	query := `
		SELECT id, name, capacity, amenities, created_at
		FROM rooms
		WHERE id = $1
	`
	room := &domain.Room{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&room.ID, &room.Name, &room.Capacity, pq.Array(&room.Amenities), &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidTextRep {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if room.Amenities == nil {
		room.Amenities = []string{}
	}
	return room, nil
}
