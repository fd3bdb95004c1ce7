package web

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRF returns middleware that requires a valid form token on every
// non-GET page request. The token key is derived from the session secret so
// it stays stable across restarts whenever the secret does.
func (h *Handler) CSRF(secret string, secure bool) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte(secret))

	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(h.rejectForbidden)),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Without TLS the Referer check would reject every form post.
			// The Origin header and the token are still checked.
			if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) rejectForbidden(w http.ResponseWriter, r *http.Request) {
	h.log(r).Warn("rejected form post", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	h.renderStatus(w, r, http.StatusForbidden, "The form expired or was not sent from this site. Reload and try again.")
}
