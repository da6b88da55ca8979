package lib

import (
	"encoding/base64"
	"net/http"
	"storefront_server/config"
	"time"
)

const (
	SessionCookieName = "session"
	NoticeCookieName  = "notice"
	LocaleCookieName  = "lang"
)

func cookieAttributes() (sameSite http.SameSite, secure bool, domain string) {
	cfg := config.GetConfig()
	return http.SameSiteLaxMode, config.IsProduction(), cfg.Server.CookieDomain
}

// SetCookie sets a secure, HttpOnly cookie that expires at expiry.
func SetCookie(key, val string, expiry time.Time, w http.ResponseWriter) {
	sameSite, secure, domain := cookieAttributes()

	cookie := &http.Cookie{
		Name:     key,
		Value:    val,
		Expires:  expiry,
		MaxAge:   max(1, int(time.Until(expiry).Seconds())),
		Path:     "/",
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		HttpOnly: true,
	}

	http.SetCookie(w, cookie)
}

func GetCookieValue(key string, r *http.Request) (string, error) {
	cookie, err := r.Cookie(key)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// ClearCookie empties the cookie and expires it immediately (Max-Age=0 on
// the wire).
func ClearCookie(key string, w http.ResponseWriter) {
	sameSite, secure, domain := cookieAttributes()

	cookie := &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   secure,
		SameSite: sameSite,
		HttpOnly: true,
	}

	http.SetCookie(w, cookie)
}

// SetCSRFCookie sets a CSRF token cookie that must be readable by JavaScript
func SetCSRFCookie(val string, expiry time.Time, w http.ResponseWriter) {
	sameSite, secure, domain := cookieAttributes()

	cookie := &http.Cookie{
		Name:     CSRFCookieName,
		Value:    val,
		Expires:  expiry,
		MaxAge:   int(time.Until(expiry).Seconds()),
		Path:     "/",
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		HttpOnly: false,
	}

	http.SetCookie(w, cookie)
}

// ReadBasket decodes the basket cookie; a missing cookie is an empty basket.
func ReadBasket(r *http.Request) Basket {
	raw, err := GetCookieValue(config.GetConfig().Basket.CookieName, r)
	if err != nil {
		return Basket{}
	}
	return DecodeBasket(raw)
}

// WriteBasket reissues the basket cookie with a fresh expiry. An empty
// basket clears the cookie instead.
func WriteBasket(w http.ResponseWriter, b Basket) {
	cfg := config.GetConfig().Basket
	if b.IsEmpty() {
		ClearCookie(cfg.CookieName, w)
		return
	}
	SetCookie(cfg.CookieName, EncodeBasket(b), time.Now().Add(cfg.CookieExpiry), w)
}

func ClearBasket(w http.ResponseWriter) {
	ClearCookie(config.GetConfig().Basket.CookieName, w)
}

// SetNotice stores a one-shot message for the next page the shopper sees.
func SetNotice(w http.ResponseWriter, message string) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(message))
	SetCookie(NoticeCookieName, encoded, time.Now().Add(5*time.Minute), w)
}

// PopNotice returns the pending notice, if any, and clears it.
func PopNotice(w http.ResponseWriter, r *http.Request) string {
	raw, err := GetCookieValue(NoticeCookieName, r)
	if err != nil || raw == "" {
		return ""
	}
	ClearCookie(NoticeCookieName, w)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// Redirect sends the shopper to target with a notice, the way every form
// submission finishes.
func Redirect(w http.ResponseWriter, r *http.Request, target, notice string) {
	if notice != "" {
		SetNotice(w, notice)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
