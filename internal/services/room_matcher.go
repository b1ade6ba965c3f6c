package services

import (
	"strings"

	"roombooking/internal/domain"
)

// ResolveRoom picks the catalogue room an assistant slot refers to.
//
// A name is matched case-insensitively, first exactly and then by containment
// ("board room" finds "Executive Board Room") when exactly one room contains it.
// A named room that is unknown or ambiguous resolves to nil. Only when no name is
// given does a capacity requirement select the smallest room that fits; ties keep
// catalogue order. It returns nil when nothing matches.
func ResolveRoom(rooms []*domain.Room, name *string, req *domain.RoomRequirements) *domain.Room {
	if name != nil && strings.TrimSpace(*name) != "" {
		return matchRoomName(rooms, *name)
	}
	if req != nil && req.MinCapacity != nil {
		return smallestFitting(rooms, *req.MinCapacity)
	}
	return nil
}

func matchRoomName(rooms []*domain.Room, name string) *domain.Room {
	want := normalizeRoomName(name)
	if want == "" {
		return nil
	}
	for _, r := range rooms {
		if normalizeRoomName(r.Name) == want {
			return r
		}
	}

	var found *domain.Room
	for _, r := range rooms {
		have := normalizeRoomName(r.Name)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			if found != nil {
				return nil
			}
			found = r
		}
	}
	return found
}

func smallestFitting(rooms []*domain.Room, minCapacity int) *domain.Room {
	var best *domain.Room
	for _, r := range rooms {
		if r.Capacity < minCapacity {
			continue
		}
		if best == nil || r.Capacity < best.Capacity {
			best = r
		}
	}
	return best
}

// normalizeRoomName lowercases s, drops a leading "the" and collapses whitespace.
func normalizeRoomName(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) > 1 && fields[0] == "the" {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}
