// Package api provides the JSON API of the movie ranker, served by huma under
// /api/v1.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/movieranker/movieranker/internal/domain"
	"github.com/movieranker/movieranker/internal/metadata/tmdb"
	"github.com/movieranker/movieranker/internal/ratelimit"
	"github.com/movieranker/movieranker/internal/validation"
)

// BasePath is where the API is mounted.
const BasePath = "/api/v1"

// MovieService is the subset of the movie use cases the API exposes.
type MovieService interface {
	RecomputeRankings(ctx context.Context) ([]*domain.Movie, error)
	GetMovie(ctx context.Context, id int64) (*domain.Movie, error)
	SearchCandidates(ctx context.Context, form validation.AddMovieForm) ([]tmdb.SearchResult, error)
	AddFromLookup(ctx context.Context, tmdbID int64) (*domain.Movie, error)
	UpdateReview(ctx context.Context, id int64, form validation.UpdateMovieForm) (*domain.Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds dependencies for the API handlers.
type Server struct {
	movies  MovieService
	db      Pinger
	limiter *ratelimit.KeyedRateLimiter
	api     huma.API
	logger  *slog.Logger
}

// NewServer creates an API server. limiter may be nil to disable lookup
// rate limiting.
func NewServer(movies MovieService, db Pinger, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	return &Server{
		movies:  movies,
		db:      db,
		limiter: limiter,
		logger:  logger,
	}
}

// Mount registers every operation under BasePath on r.
func (s *Server) Mount(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Retry-After"},
			MaxAge:         300,
		}))

		s.api = humachi.New(r, newConfig())
		RegisterErrorHandler()

		s.registerHealthRoutes()
		s.registerMovieRoutes()
		s.registerLookupRoutes()
	})
}

// API returns the underlying huma API. Only valid after Mount.
func (s *Server) API() huma.API {
	return s.api
}

func newConfig() huma.Config {
	cfg := huma.DefaultConfig("Movie Ranker API", "1.0.0")
	cfg.Info.Description = "Personal ranked movie list backed by The Movie Database."
	cfg.Servers = []*huma.Server{{URL: BasePath}}
	return cfg
}

// lookupLimit is a huma middleware that applies the per-IP limiter to
// operations that call TMDB.
func (s *Server) lookupLimit(ctx huma.Context, next func(huma.Context)) {
	if s.limiter == nil {
		next(ctx)
		return
	}

	r, _ := humachi.Unwrap(ctx)
	key := ratelimit.ClientIP(r)
	if !s.limiter.Allow(key) {
		s.logger.Warn("rate limit exceeded", "ip", key, "operation", ctx.Operation().OperationID)
		ctx.SetHeader("Retry-After", "1")
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many lookups, try again later")
		return
	}

	next(ctx)
}
