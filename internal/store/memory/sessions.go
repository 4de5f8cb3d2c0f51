package memory

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

type sessionEntry struct {
	session  auth.Session
	deadline time.Time
}

// SessionStore keeps admin sessions in process memory.
// Expired entries are invisible to Get and removed by Reap.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]sessionEntry),
		now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, key string, session auth.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = sessionEntry{session: session, deadline: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Get(_ context.Context, key string) (auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[key]
	if !ok || !s.now().Before(e.deadline) {
		return auth.Session{}, &domain.ErrNotFound{Type: "session", ID: key}
	}
	return e.session, nil
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	return nil
}

// Reap removes sessions whose deadline is not after now and returns how many went.
func (s *SessionStore) Reap(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.sessions {
		if !now.Before(e.deadline) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
