package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

var _ auth.SessionStore = (*SessionStore)(nil)

func TestSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore()
	store.now = func() time.Time { return now }

	session := auth.Session{State: auth.StateSignedInAdmin, Email: "admin@example.com"}
	require.NoError(t, store.Save(ctx, "k", session, time.Minute))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, session, got)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "k")
	var nf *domain.ErrNotFound
	assert.True(t, errors.As(err, &nf))

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, store.Reap(now))
	assert.Equal(t, 0, store.Len())
}

func TestSessionStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	require.NoError(t, store.Save(ctx, "k", auth.Session{State: auth.StateAuthenticating}, time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.Error(t, err)
}
