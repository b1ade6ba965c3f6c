package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombooking/internal/domain"
)

type roomService struct {
	roomRepo       domain.RoomRepository
	contextTimeout time.Duration
}

// NewRoomService returns a RoomService over the given catalogue.
func NewRoomService(roomRepo domain.RoomRepository, timeout time.Duration) domain.RoomService {
	return &roomService{roomRepo: roomRepo, contextTimeout: timeout}
}

func (s *roomService) List(ctx context.Context) ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rooms, err := s.roomRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	return rooms, nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}
