package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/movieranker/movieranker/internal/logger"
)

// RequestLogger logs one line per request and stores a request-scoped logger
// carrying the request id in the context. It must run after
// middleware.RequestID.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := base.With("request_id", middleware.GetReqID(r.Context()))
			r = r.WithContext(logger.NewContext(r.Context(), reqLogger))

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				level := slog.LevelInfo
				switch {
				case status >= 500:
					level = slog.LevelError
				case status >= 400:
					level = slog.LevelWarn
				}

				reqLogger.Log(r.Context(), level, "http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"remote", r.RemoteAddr,
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// UseCommon installs the middleware stack shared by the HTML and JSON routes.
func UseCommon(r chi.Router, base *slog.Logger) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(base))
	r.Use(middleware.Recoverer)
}

// log returns the request-scoped logger.
func (h *Handler) log(r *http.Request) *slog.Logger {
	return logger.FromContext(r.Context(), h.logger)
}
