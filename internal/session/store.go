// Package session keeps assistant conversations for clients that do not hold
// their own history. Histories live in a Backend and expire after a period of inactivity.
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"roombooking/internal/domain"
)

// Backend persists conversation histories by session id.
type Backend interface {
	Load(ctx context.Context, id string) ([]domain.ChatTurn, bool, error)
	Save(ctx context.Context, id string, history []domain.ChatTurn) error
	Delete(ctx context.Context, id string) error
}

// Store hands out sessions backed by a Backend. Turns of the same session are
// serialized within the process.
type Store struct {
	backend Backend

	mu    sync.Mutex
	locks map[string]*turnLock
}

type turnLock struct {
	sync.Mutex
	refs int
}

// Session is one conversation, held exclusively between Acquire and Release.
type Session struct {
	ID string

	history []domain.ChatTurn
	store   *Store
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend, locks: make(map[string]*turnLock)}
}

// Acquire returns the session for id, locked for the caller. An empty, unknown or
// expired id starts a new session with a fresh id.
func (s *Store) Acquire(ctx context.Context, id string) (*Session, error) {
	if id != "" {
		s.lock(id)
		history, ok, err := s.backend.Load(ctx, id)
		if err != nil {
			s.unlock(id)
			return nil, fmt.Errorf("load session: %w", err)
		}
		if ok {
			return &Session{ID: id, history: history, store: s}, nil
		}
		s.unlock(id)
	}
	fresh := uuid.NewString()
	s.lock(fresh)
	return &Session{ID: fresh, store: s}, nil
}

// Delete forgets a session once any turn in flight for it has been released.
// Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.lock(id)
	defer s.unlock(id)
	return s.backend.Delete(ctx, id)
}

func (s *Store) lock(id string) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &turnLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()
	l.Lock()
}

func (s *Store) unlock(id string) {
	s.mu.Lock()
	l := s.locks[id]
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
	s.mu.Unlock()
	l.Unlock()
}

// History returns a copy of the stored turns.
func (sess *Session) History() []domain.ChatTurn {
	return slices.Clone(sess.history)
}

// Save persists history as the session's turns.
func (sess *Session) Save(ctx context.Context, history []domain.ChatTurn) error {
	sess.history = slices.Clone(history)
	if err := sess.store.backend.Save(ctx, sess.ID, sess.history); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Release unlocks the session.
func (sess *Session) Release() {
	sess.store.unlock(sess.ID)
}
