package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
)

// Middleware limits requests per client IP. Requests over the limit are
// handed to reject instead of next.
func (krl *KeyedRateLimiter) Middleware(reject http.HandlerFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)

			if !krl.Allow(key) {
				if logger != nil {
					logger.Warn("rate limit exceeded",
						"ip", key,
						"path", r.URL.Path,
					)
				}
				w.Header().Set("Retry-After", "1")
				reject(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr. Run chi's RealIP middleware
// first so proxy headers are already folded into RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
