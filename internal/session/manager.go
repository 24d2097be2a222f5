package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Manager hands out per-session stores keyed by opaque IDs and evicts
// sessions that have been idle past the ttl. There is no cross-session
// sharing; every browser owns its state exclusively.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
}

// NewManager creates a manager with the given idle ttl.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &Manager{
		sessions: make(map[string]*entry),
		ttl:      ttl,
	}
}

// Get returns the store for id when the session is still live.
func (m *Manager) Get(id string) (*Store, bool) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep(now)

	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = now
	return e.store, true
}

// Create starts a fresh session and returns its ID and empty store.
func (m *Manager) Create() (string, *Store) {
	id := uuid.NewString()
	store := NewStore()
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep(now)
	m.sessions[id] = &entry{store: store, lastSeen: now}
	return id, store
}

// GetOrCreate resolves id to its store, creating a new session when id is
// empty or expired. The returned ID is what the caller should set on the
// cookie.
func (m *Manager) GetOrCreate(id string) (string, *Store) {
	if id != "" {
		if store, ok := m.Get(id); ok {
			return id, store
		}
	}
	return m.Create()
}

// sweep drops idle sessions. Caller holds the lock.
func (m *Manager) sweep(now time.Time) {
	cutoff := now.Add(-m.ttl)
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
