package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// State is the admin sign-in state of a browser session.
type State string

const (
	StateSignedOut      State = "signed_out"
	StateAuthenticating State = "authenticating"
	StateSignedInAdmin  State = "signed_in_admin"
)

// Identity is what the identity provider returns after a successful sign-in.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Expiry  time.Time // zero when the provider did not say
}

// Session is one browser's view of the guard.
type Session struct {
	State State `json:"state"`
	// HashedState is the hashed OAuth2 state for a sign-in in progress.
	HashedState string    `json:"hashedState,omitempty"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name,omitempty"`
	Expires     time.Time `json:"expires"`
}

// Admin reports whether the session grants admin access at now.
func (s Session) Admin(now time.Time) bool {
	return s.State == StateSignedInAdmin && now.Before(s.Expires)
}

// SessionStore persists sessions keyed by hashed token.
// Get returns *domain.ErrNotFound for unknown or expired keys.
type SessionStore interface {
	Save(ctx context.Context, key string, s Session, ttl time.Duration) error
	Get(ctx context.Context, key string) (Session, error)
	Delete(ctx context.Context, key string) error
}

// newToken returns a random hex token of n bytes of entropy.
func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hash returns the storage key for a secret token.
func hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
