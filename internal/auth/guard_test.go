package auth_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
	"github.com/MrSnakeDoc/jobboard/internal/store/memory"
)

type fakeProvider struct {
	identity auth.Identity
	err      error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(context.Context, string) (auth.Identity, error) {
	return p.identity, p.err
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func newGuard(provider auth.Provider, now func() time.Time) (*auth.Guard, *memory.SessionStore) {
	sessions := memory.NewSessionStore()
	guard := auth.NewGuard(provider, sessions, auth.GuardOptions{
		AdminEmails: []string{"admin@example.com"},
		Now:         now,
	}, logger.NewNop())
	return guard, sessions
}

func TestGuardAdminSignIn(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{identity: auth.Identity{Email: "admin@example.com", Name: "Admin"}}
	guard, _ := newGuard(provider, nil)

	var mu sync.Mutex
	var transitions []auth.Transition
	stop := guard.Observe(func(tr auth.Transition) {
		mu.Lock()
		transitions = append(transitions, tr)
		mu.Unlock()
	})
	defer stop()

	challenge, err := guard.Begin(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, challenge.Token)

	pending, err := guard.Session(ctx, challenge.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.StateAuthenticating, pending.State)

	session, err := guard.Complete(ctx, challenge.Token, stateFrom(t, challenge.AuthURL), "code")
	require.NoError(t, err)
	assert.Equal(t, auth.StateSignedInAdmin, session.State)
	assert.Equal(t, "admin@example.com", session.Email)
	assert.True(t, session.Admin(time.Now()))

	current, err := guard.Session(ctx, challenge.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.StateSignedInAdmin, current.State)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, transitions, 2)
	assert.Equal(t, auth.StateAuthenticating, transitions[0].To)
	assert.Equal(t, auth.StateSignedInAdmin, transitions[1].To)
}

func TestGuardRejectsNonAdmin(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{identity: auth.Identity{Email: "someone@example.com"}}
	guard, _ := newGuard(provider, nil)

	var last auth.Transition
	guard.Observe(func(tr auth.Transition) { last = tr })

	challenge, err := guard.Begin(ctx)
	require.NoError(t, err)

	session, err := guard.Complete(ctx, challenge.Token, stateFrom(t, challenge.AuthURL), "code")
	var authz *domain.ErrAuthorization
	require.True(t, errors.As(err, &authz))
	assert.Equal(t, "someone@example.com", authz.Email)
	assert.Equal(t, auth.StateSignedOut, session.State)
	assert.Equal(t, auth.StateSignedOut, last.To)

	current, err := guard.Session(ctx, challenge.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.StateSignedOut, current.State)
}

func TestGuardAllowListIsCaseSensitive(t *testing.T) {
	guard, _ := newGuard(&fakeProvider{}, nil)

	assert.True(t, guard.IsAdmin("admin@example.com"))
	assert.False(t, guard.IsAdmin("Admin@example.com"))
	assert.False(t, guard.IsAdmin(""))
}

func TestGuardStateMismatch(t *testing.T) {
	ctx := context.Background()
	guard, _ := newGuard(&fakeProvider{identity: auth.Identity{Email: "admin@example.com"}}, nil)

	challenge, err := guard.Begin(ctx)
	require.NoError(t, err)

	_, err = guard.Complete(ctx, challenge.Token, "forged", "code")
	var authn *domain.ErrAuthentication
	assert.True(t, errors.As(err, &authn))

	_, err = guard.Complete(ctx, "unknown-token", "whatever", "code")
	assert.True(t, errors.As(err, &authn))
}

func TestGuardExchangeFailure(t *testing.T) {
	ctx := context.Background()
	guard, _ := newGuard(&fakeProvider{err: errors.New("idp down")}, nil)

	challenge, err := guard.Begin(ctx)
	require.NoError(t, err)

	session, err := guard.Complete(ctx, challenge.Token, stateFrom(t, challenge.AuthURL), "code")
	var transient *domain.ErrTransientBackend
	assert.True(t, errors.As(err, &transient))
	assert.Equal(t, auth.StateSignedOut, session.State)
}

func TestGuardSessionExpiresWithIdentity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	provider := &fakeProvider{identity: auth.Identity{
		Email:  "admin@example.com",
		Expiry: now.Add(time.Hour),
	}}
	guard, _ := newGuard(provider, clock)

	challenge, err := guard.Begin(ctx)
	require.NoError(t, err)
	session, err := guard.Complete(ctx, challenge.Token, stateFrom(t, challenge.AuthURL), "code")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), session.Expires)

	now = now.Add(2 * time.Hour)
	current, err := guard.Session(ctx, challenge.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.StateSignedOut, current.State)
}

func TestGuardSignOut(t *testing.T) {
	ctx := context.Background()
	guard, sessions := newGuard(&fakeProvider{identity: auth.Identity{Email: "admin@example.com"}}, nil)

	challenge, err := guard.Begin(ctx)
	require.NoError(t, err)
	_, err = guard.Complete(ctx, challenge.Token, stateFrom(t, challenge.AuthURL), "code")
	require.NoError(t, err)

	assert.Equal(t, auth.StateSignedOut, guard.SignOut(ctx, challenge.Token).State)
	assert.Equal(t, auth.StateSignedOut, guard.SignOut(ctx, challenge.Token).State)
	assert.Equal(t, auth.StateSignedOut, guard.SignOut(ctx, "").State)
	assert.Equal(t, 0, sessions.Len())

	current, err := guard.Session(ctx, challenge.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.StateSignedOut, current.State)
}
