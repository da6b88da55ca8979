package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
)

// getRateLimitForEndpoint picks the limit bucket for a request.
func (mw *Middleware) getRateLimitForEndpoint(path, method string) (int, time.Duration) {
	rl := mw.cfg.RateLimit

	switch {
	case method == http.MethodPost && (path == "/login" || path == "/register" || path == "/account"):
		return rl.AuthLimit, rl.AuthWindow
	case method == http.MethodPost && (path == "/checkout" || path == "/confirm-checkout"):
		return rl.CheckoutLimit, rl.CheckoutWindow
	case method == http.MethodGet && (path == "/products" || strings.HasPrefix(path, "/product/")):
		return rl.ExpensiveLimit, rl.ExpensiveWindow
	}

	return rl.GeneralLimit, rl.GeneralWindow
}

// getClientIP extracts the client IP, preferring proxy headers.
func (mw *Middleware) getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	return ip
}

// normalizeEndpoint groups product pages so ids don't each get a counter.
func normalizeEndpoint(path string) string {
	path = strings.TrimSuffix(path, "/")
	if strings.HasPrefix(path, "/product/") {
		return "/product/:id"
	}
	if path == "" {
		return "/"
	}
	return path
}

// RateLimitMiddleware counts requests per client and endpoint in the cache.
// Cache failures let the request through.
func (mw *Middleware) RateLimitMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mw.cfg.RateLimit.Enabled || strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := mw.getClientIP(r)
			limit, window := mw.getRateLimitForEndpoint(r.URL.Path, r.Method)
			endpoint := r.Method + ":" + normalizeEndpoint(r.URL.Path)

			count, err := mw.cache.IncrementRateLimit(clientIP, endpoint, window)
			if err != nil {
				mw.logger.Warn("Rate limit cache error, allowing request",
					gecho.Field("error", err),
					gecho.Field("ip", clientIP),
					gecho.Field("endpoint", endpoint),
				)
				next.ServeHTTP(w, r)
				return
			}

			reset := fmt.Sprintf("%d", time.Now().Add(window).Unix())
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Reset", reset)

			if count > limit {
				mw.logger.Warn("Rate limit exceeded",
					gecho.Field("ip", clientIP),
					gecho.Field("endpoint", endpoint),
					gecho.Field("count", count),
					gecho.Field("limit", limit),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
				gecho.TooManyRequests(w,
					gecho.WithMessage("Rate limit exceeded. Please try again later."),
					gecho.WithData(map[string]any{
						"limit":       limit,
						"window":      window.String(),
						"retry_after": int(window.Seconds()),
					}),
					gecho.Send(),
				)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, limit-count)))
			next.ServeHTTP(w, r)
		})
	}
}
