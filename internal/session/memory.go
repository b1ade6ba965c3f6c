package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"roombooking/internal/domain"
)

// MemoryBackend keeps histories in process. Expired entries are dropped lazily.
type MemoryBackend struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type memoryEntry struct {
	history []domain.ChatTurn
	touched time.Time
}

// NewMemoryBackend returns a MemoryBackend whose sessions expire after ttl without
// use. A ttl of zero or less keeps sessions forever.
func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryBackend) Load(_ context.Context, id string) ([]domain.ChatTurn, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweepLocked(now)
	e, ok := m.entries[id]
	if !ok || m.expired(e, now) {
		delete(m.entries, id)
		return nil, false, nil
	}
	e.touched = now
	m.entries[id] = e
	return slices.Clone(e.history), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, id string, history []domain.ChatTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{history: slices.Clone(history), touched: m.now()}
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryBackend) expired(e memoryEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.touched) > m.ttl
}

// sweepLocked drops expired entries at most once per ttl.
func (m *MemoryBackend) sweepLocked(now time.Time) {
	if m.ttl <= 0 || now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now
	for id, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, id)
		}
	}
}
