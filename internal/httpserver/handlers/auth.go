package handlers

import (
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/mw"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/respond"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

const adminPath = "/admin"

// Login starts the identity provider flow and remembers the pending
// sign-in in the session cookie.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Guard == nil {
			redirectWithError(w, r, "Admin sign-in is disabled.")
			return
		}

		challenge, err := d.Guard.Begin(r.Context())
		if err != nil {
			_, body := respond.Status(err)
			redirectWithError(w, r, body.Message)
			return
		}

		setSessionCookie(w, d, challenge.Token)
		http.Redirect(w, r, challenge.AuthURL, http.StatusFound)
	}
}

// Callback completes the flow. Identities outside the allow-list are
// signed out on the spot and sent back with the rejection message.
func Callback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Guard == nil {
			redirectWithError(w, r, "Admin sign-in is disabled.")
			return
		}

		token := mw.SessionToken(r)
		q := r.URL.Query()
		if providerErr := q.Get("error"); providerErr != "" {
			d.Logger.Warn("identity provider returned an error",
				logger.String("error", providerErr))
			d.Guard.SignOut(r.Context(), token)
			clearSessionCookie(w, d)
			redirectWithError(w, r, "Sign-in was cancelled.")
			return
		}

		if _, err := d.Guard.Complete(r.Context(), token, q.Get("state"), q.Get("code")); err != nil {
			clearSessionCookie(w, d)
			_, body := respond.Status(err)
			redirectWithError(w, r, body.Message)
			return
		}

		http.Redirect(w, r, adminPath, http.StatusFound)
	}
}

// Logout always ends signed out.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Guard != nil {
			d.Guard.SignOut(r.Context(), mw.SessionToken(r))
		}
		clearSessionCookie(w, d)
		http.Redirect(w, r, adminPath, http.StatusSeeOther)
	}
}

func setSessionCookie(w http.ResponseWriter, d deps.Deps, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   d.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, d deps.Deps) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   d.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = (&domain.ErrAuthentication{Reason: "sign-in failed"}).Error()
	}
	http.Redirect(w, r, adminPath+"?error="+url.QueryEscape(message), http.StatusFound)
}
