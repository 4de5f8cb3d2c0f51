package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

const (
	// DefaultSessionTTL bounds an admin session when the provider gives no expiry.
	DefaultSessionTTL = 12 * time.Hour
	// DefaultSignInTTL bounds how long a sign-in may stay in the Authenticating state.
	DefaultSignInTTL = 10 * time.Minute
)

// Provider is an interactive, redirect-based identity provider.
type Provider interface {
	// AuthCodeURL is where the browser goes to sign in.
	AuthCodeURL(state string) string
	// Exchange trades the callback code for the signed-in identity.
	Exchange(ctx context.Context, code string) (Identity, error)
}

// Challenge is returned by Begin.
type Challenge struct {
	Token   string // session token, kept by the browser
	AuthURL string // provider sign-in page
}

// Transition describes one state change, for observers.
type Transition struct {
	From  State
	To    State
	Email string
	At    time.Time
}

// GuardOptions configures a Guard.
type GuardOptions struct {
	AdminEmails []string
	SessionTTL  time.Duration
	SignInTTL   time.Duration
	Now         func() time.Time
}

// Guard restricts admin sign-in to a fixed allow-list of email addresses.
//
// SignedOut -> Authenticating (Begin) -> SignedInAdmin (Complete)
// or back to SignedOut when the identity is not on the allow-list.
type Guard struct {
	provider   Provider
	sessions   SessionStore
	allowed    map[string]struct{}
	sessionTTL time.Duration
	signInTTL  time.Duration
	now        func() time.Time
	logger     logger.Logger

	mu        sync.RWMutex
	observers map[int]func(Transition)
	nextObs   int
}

// NewGuard creates a guard. The allow-list is matched case-sensitively.
func NewGuard(provider Provider, sessions SessionStore, opts GuardOptions, log logger.Logger) *Guard {
	allowed := make(map[string]struct{}, len(opts.AdminEmails))
	for _, email := range opts.AdminEmails {
		allowed[email] = struct{}{}
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.SignInTTL <= 0 {
		opts.SignInTTL = DefaultSignInTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Guard{
		provider:   provider,
		sessions:   sessions,
		allowed:    allowed,
		sessionTTL: opts.SessionTTL,
		signInTTL:  opts.SignInTTL,
		now:        opts.Now,
		logger:     log,
		observers:  make(map[int]func(Transition)),
	}
}

// IsAdmin reports whether email is on the allow-list.
func (g *Guard) IsAdmin(email string) bool {
	_, ok := g.allowed[email]
	return ok
}

// Observe registers fn for every state transition and returns its removal func.
func (g *Guard) Observe(fn func(Transition)) func() {
	g.mu.Lock()
	id := g.nextObs
	g.nextObs++
	g.observers[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.observers, id)
			g.mu.Unlock()
		})
	}
}

// Begin starts an interactive sign-in.
func (g *Guard) Begin(ctx context.Context) (Challenge, error) {
	token, err := newToken(32)
	if err != nil {
		return Challenge{}, fmt.Errorf("failed to generate session token: %w", err)
	}
	state, err := newToken(16)
	if err != nil {
		return Challenge{}, fmt.Errorf("failed to generate oauth2 state: %w", err)
	}

	session := Session{
		State:       StateAuthenticating,
		HashedState: hash(state),
		Expires:     g.now().Add(g.signInTTL),
	}
	if err := g.sessions.Save(ctx, hash(token), session, g.signInTTL); err != nil {
		return Challenge{}, &domain.ErrTransientBackend{
			Op:      "begin sign-in",
			Message: "Sign-in is temporarily unavailable.",
			Err:     err,
		}
	}

	g.publish(StateSignedOut, StateAuthenticating, "")
	return Challenge{Token: token, AuthURL: g.provider.AuthCodeURL(state)}, nil
}

// Complete finishes the sign-in started by Begin.
// Identities outside the allow-list are signed out immediately and
// *domain.ErrAuthorization is returned.
func (g *Guard) Complete(ctx context.Context, token, state, code string) (Session, error) {
	key := hash(token)

	pending, err := g.sessions.Get(ctx, key)
	if err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return Session{State: StateSignedOut}, &domain.ErrAuthentication{Reason: "no sign-in in progress"}
		}
		return Session{State: StateSignedOut}, g.transient("complete sign-in", err)
	}
	if pending.State != StateAuthenticating || pending.HashedState != hash(state) {
		return Session{State: StateSignedOut}, &domain.ErrAuthentication{Reason: "sign-in state mismatch"}
	}

	identity, err := g.provider.Exchange(ctx, code)
	if err != nil {
		g.forceSignOut(ctx, key, StateAuthenticating, "")
		return Session{State: StateSignedOut}, g.transient("exchange code", err)
	}

	if !g.IsAdmin(identity.Email) {
		g.logger.Warn("rejected non-admin sign-in",
			logger.String("email", identity.Email))
		g.forceSignOut(ctx, key, StateAuthenticating, identity.Email)
		return Session{State: StateSignedOut}, &domain.ErrAuthorization{Email: identity.Email}
	}

	now := g.now()
	expires := now.Add(g.sessionTTL)
	if !identity.Expiry.IsZero() && identity.Expiry.Before(expires) {
		expires = identity.Expiry
	}
	session := Session{
		State:   StateSignedInAdmin,
		Email:   identity.Email,
		Name:    identity.Name,
		Expires: expires,
	}
	if err := g.sessions.Save(ctx, key, session, expires.Sub(now)); err != nil {
		return Session{State: StateSignedOut}, g.transient("save session", err)
	}

	g.logger.Info("admin signed in", logger.String("email", identity.Email))
	g.publish(StateAuthenticating, StateSignedInAdmin, identity.Email)
	return session, nil
}

// Session returns the current state for token. Unknown and expired
// tokens are SignedOut.
func (g *Guard) Session(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{State: StateSignedOut}, nil
	}

	session, err := g.sessions.Get(ctx, hash(token))
	if err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return Session{State: StateSignedOut}, nil
		}
		return Session{State: StateSignedOut}, g.transient("load session", err)
	}
	if !g.now().Before(session.Expires) {
		return Session{State: StateSignedOut}, nil
	}
	return session, nil
}

// SignOut always ends in SignedOut. Store failures are logged only.
func (g *Guard) SignOut(ctx context.Context, token string) Session {
	if token == "" {
		return Session{State: StateSignedOut}
	}
	key := hash(token)
	previous, err := g.sessions.Get(ctx, key)
	if err != nil {
		previous = Session{State: StateSignedOut}
	}
	g.forceSignOut(ctx, key, previous.State, previous.Email)
	return Session{State: StateSignedOut}
}

func (g *Guard) forceSignOut(ctx context.Context, key string, from State, email string) {
	if err := g.sessions.Delete(ctx, key); err != nil {
		g.logger.Warn("failed to delete session", logger.Error(err))
	}
	if from != StateSignedOut {
		g.publish(from, StateSignedOut, email)
	}
}

func (g *Guard) publish(from, to State, email string) {
	t := Transition{From: from, To: to, Email: email, At: g.now()}

	g.mu.RLock()
	observers := make([]func(Transition), 0, len(g.observers))
	for _, fn := range g.observers {
		observers = append(observers, fn)
	}
	g.mu.RUnlock()

	for _, fn := range observers {
		fn(t)
	}
}

func (g *Guard) transient(op string, err error) error {
	g.logger.Error("auth backend failure",
		logger.String("op", op),
		logger.Error(err))
	return &domain.ErrTransientBackend{
		Op:      op,
		Message: "Sign-in failed. Please try again.",
		Err:     err,
	}
}
