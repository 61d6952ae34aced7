package web

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs"
	"github.com/corpushub/catalog/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	// SessionKey holds the resolved identity inside the cookie session.
	SessionKey = "user"
	// SessionKeywordsKey holds the sticky search keyword sequence.
	SessionKeywordsKey = "corparchKeywords"
)

type userKey struct{}

type sessionKey struct{}

// GetUser returns the identity resolved for the current request. The second
// value is false only when the session middleware did not run.
func GetUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	return u, ok
}

// RequestSession returns the session the middleware loaded for this request.
// Every session write within one request must go through this single object:
// a second Load from the request cookie starts from the pre-request state and
// its next write would discard anything written in between.
func RequestSession(r *http.Request, manager *scs.Manager) *scs.Session {
	if s, ok := r.Context().Value(sessionKey{}).(*scs.Session); ok {
		return s
	}
	return manager.Load(r)
}

// SessionMiddleware resolves the caller's identity once per request: a stored
// session identity wins, otherwise the federated headers are inspected. The
// resolved identity (possibly anonymous) is always placed in the context, and
// a fresh non-anonymous one is written back to the session.
func SessionMiddleware(handler *Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := handler.SessionManager.Load(r)

			var u domain.User
			err := session.GetObject(SessionKey, &u)
			if err != nil || u == (domain.User{}) {
				u = handler.Auth.Validate(r.Context(), "", "", r.Header)
				if !handler.Auth.IsAnonymous(u) {
					if err := session.PutObject(w, SessionKey, u); err != nil {
						log.Warn().Err(err).Msg("failed to persist session identity")
					}
				}
			}

			ctx := context.WithValue(r.Context(), userKey{}, u)
			ctx = context.WithValue(ctx, sessionKey{}, session)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthenticatedMiddleware rejects anonymous callers.
func AuthenticatedMiddleware(handler *Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := GetUser(r.Context())
			if !ok || handler.Auth.IsAnonymous(u) {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}

// Login authenticates against the local credential store. A failed login is
// indistinguishable from no login: the response carries the anonymous
// identity either way.
func Login(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session := RequestSession(r, handler.SessionManager)
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "failed to parse form body")
			return
		}

		username := r.Form.Get("username")
		password := r.Form.Get("password")
		u := handler.Auth.Validate(ctx, username, password, nil)
		if !handler.Auth.IsAnonymous(u) {
			if err := session.PutObject(w, SessionKey, u); err != nil {
				writeError(w, http.StatusInternalServerError, "failed to create session")
				return
			}
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type scsSession struct {
	s *scs.Session
	w http.ResponseWriter
}

func (d scsSession) Destroy() error {
	return d.s.Destroy(d.w)
}

// Logout drops the session and redirects to the configured logout location.
func Logout(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := RequestSession(r, handler.SessionManager)
		if err := handler.Auth.Logout(scsSession{s: session, w: w}); err != nil {
			log.Warn().Err(err).Msg("failed to destroy session on logout")
		}

		target := handler.Auth.GetLogoutURL()
		if target == "" {
			target = "/"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
