package providers

import (
	"github.com/gorilla/sessions"
	"github.com/samber/do/v2"

	"github.com/movieranker/movieranker/internal/config"
	"github.com/movieranker/movieranker/internal/logger"
	"github.com/movieranker/movieranker/internal/ratelimit"
	"github.com/movieranker/movieranker/internal/web"
)

// LookupLimiterHandle wraps the per-client lookup limiter, whose sweeper runs
// in the background until shutdown.
type LookupLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LookupLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLookupLimiter provides the per-IP limiter guarding routes that call TMDB.
func ProvideLookupLimiter(i do.Injector) (*LookupLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	limiter := ratelimit.New(cfg.RateLimit.LookupRPS, cfg.RateLimit.LookupBurst)

	log.Info("Lookup rate limiter started",
		"rps", cfg.RateLimit.LookupRPS,
		"burst", cfg.RateLimit.LookupBurst,
	)

	return &LookupLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// ProvideSessionStore provides the signed cookie store backing flash messages.
func ProvideSessionStore(i do.Injector) (sessions.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return web.NewCookieStore(cfg.Session.Secret, cfg.Session.Secure), nil
}
