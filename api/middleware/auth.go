package middleware

import (
	"context"
	"errors"
	"net/http"
	"storefront_server/lib"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
)

type contextKey string

const (
	SessionContextKey contextKey = "session"
	LocaleContextKey  contextKey = "locale"
)

// LoginNotice is shown when a signed-out shopper reaches an account page.
const LoginNotice = "Please log in to access this page."

// SessionMiddleware resolves the session cookie, when there is one, into a
// *structs.Session on the request context. A stale or revoked cookie is
// cleared and the request continues anonymously.
func (mw *Middleware) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := lib.GetCookieValue(lib.SessionCookieName, r)
		if err != nil || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := mw.authService.ResolveSession(token)
		if err != nil {
			if !errors.Is(err, lib.ErrExpiredToken) && !errors.Is(err, lib.ErrRevokedToken) {
				mw.logger.Warn("Rejected session cookie", gecho.Field("error", err))
			}
			lib.ClearCookie(lib.SessionCookieName, w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession sends signed-out shoppers to the login page with a notice.
// Must be used after SessionMiddleware.
func (mw *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			lib.Redirect(w, r, "/login", LoginNotice)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSessionJSON is RequireSession for routes called from scripts.
func (mw *Middleware) RequireSessionJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			gecho.Unauthorized(w, gecho.WithMessage(LoginNotice), gecho.Send())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetSessionFromContext(ctx context.Context) (*structs.Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*structs.Session)
	return session, ok && session != nil
}
