package middleware

import (
	"context"
	"net/http"
	"regexp"
	"storefront_server/lib"
	"strings"
	"time"
)

var localePattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)

// LocaleMiddleware remembers ?lang=xx in the lang cookie and exposes the
// active locale on the request context.
func (mw *Middleware) LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := mw.cfg.Server.DefaultLocale

		if stored, err := lib.GetCookieValue(lib.LocaleCookieName, r); err == nil && localePattern.MatchString(stored) {
			locale = stored
		}
		if requested := strings.ToLower(r.URL.Query().Get("lang")); localePattern.MatchString(requested) {
			locale = requested
			lib.SetCookie(lib.LocaleCookieName, locale, time.Now().Add(365*24*time.Hour), w)
		}

		ctx := context.WithValue(r.Context(), LocaleContextKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetLocaleFromContext(ctx context.Context) string {
	locale, _ := ctx.Value(LocaleContextKey).(string)
	return locale
}
