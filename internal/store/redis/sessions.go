package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

// SessionStore keeps admin sessions in Redis with a TTL per key
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis session store
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save stores a session under its hashed token
func (s *SessionStore) Save(ctx context.Context, key string, session auth.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, SessionKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves a session by hashed token
func (s *SessionStore) Get(ctx context.Context, key string) (auth.Session, error) {
	data, err := s.client.Get(ctx, SessionKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.Session{}, &domain.ErrNotFound{Type: "session", ID: key}
		}
		return auth.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var session auth.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return auth.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return session, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, SessionKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
