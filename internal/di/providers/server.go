package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/samber/do/v2"

	"github.com/movieranker/movieranker/internal/api"
	"github.com/movieranker/movieranker/internal/config"
	"github.com/movieranker/movieranker/internal/logger"
	"github.com/movieranker/movieranker/internal/service"
	"github.com/movieranker/movieranker/internal/validation"
	"github.com/movieranker/movieranker/internal/web"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// NewRouter builds the full route tree: HTML pages at the root and the JSON
// API under api.BasePath, sharing one service and one lookup limiter.
func NewRouter(i do.Injector) (http.Handler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*LookupLimiterHandle](i)
	movieService := do.MustInvoke[*service.MovieService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	sessionStore := do.MustInvoke[sessions.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	pages, err := web.NewHandler(movieService, validator, web.NewFlashes(sessionStore), log.Logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	web.UseCommon(r, log.Logger)

	pages.Register(r,
		limiter.Middleware(pages.RejectTooManyRequests, log.Logger),
		pages.CSRF(cfg.Session.Secret, cfg.Session.Secure),
	)
	api.NewServer(movieService, storeHandle.Store, limiter.KeyedRateLimiter, log.Logger).Mount(r)

	return r, nil
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler, err := NewRouter(i)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
