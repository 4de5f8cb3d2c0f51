package mw

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/respond"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

// SessionCookie carries the raw admin session token.
const SessionCookie = "jobboard_session"

type sessionKey struct{}

// SessionToken returns the session cookie value, or "".
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// AdminSession returns the session stored by RequireAdmin.
func AdminSession(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(auth.Session)
	return s, ok
}

// RequireAdmin rejects requests without a signed-in admin session.
// A nil guard means sign-in is disabled and every request is rejected.
func RequireAdmin(guard *auth.Guard, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guard == nil {
				respond.Error(w, log, &domain.ErrAuthentication{Reason: "admin sign-in is disabled"})
				return
			}

			session, err := guard.Session(r.Context(), SessionToken(r))
			if err != nil {
				respond.Error(w, log, err)
				return
			}
			if session.State != auth.StateSignedInAdmin {
				respond.Error(w, log, &domain.ErrAuthentication{Reason: "admin session required"})
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
