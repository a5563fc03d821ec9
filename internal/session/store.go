// Package session owns the per-browser-session edit state: an in-memory TTL
// store of sessions and the controller that mutates them.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"server/internal/domain"
)

// Entry pairs a session with the mutex that serializes access to it. All five
// state fields are owned by the session and mutated only through the
// controller while this mutex is held.
type Entry struct {
	mu      sync.Mutex
	session *domain.EditSession
}

// Store keeps sessions in memory with an idle TTL. Sessions are deliberately
// not persisted anywhere: an edit lives exactly as long as the session that
// produced it.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Create registers a fresh empty session and returns it.
func (s *Store) Create() *domain.EditSession {
	id := uuid.NewString()
	entry := &Entry{session: domain.NewEditSession(id)}
	s.cache.Set(id, entry, s.ttl)
	return entry.session
}

// Get returns the entry for id and refreshes its idle TTL.
func (s *Store) Get(id string) (*Entry, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	entry := v.(*Entry)
	s.cache.Set(id, entry, s.ttl)
	return entry, nil
}

// Delete removes a session outright.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len reports how many live sessions the store holds.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
