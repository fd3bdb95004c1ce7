// Package di provides dependency injection configuration for the movie ranker.
package di

import (
	"github.com/gorilla/sessions"
	"github.com/samber/do/v2"

	"github.com/movieranker/movieranker/internal/config"
	"github.com/movieranker/movieranker/internal/di/providers"
	"github.com/movieranker/movieranker/internal/logger"
	"github.com/movieranker/movieranker/internal/service"
	"github.com/movieranker/movieranker/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()
	Register(injector)
	return injector
}

// Register adds every provider to the injector. Tests use it to override
// individual providers with do.Override before invoking anything.
func Register(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Metadata layer
	do.Provide(injector, providers.ProvideTMDBClient)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideMovieService)

	// HTTP plumbing
	do.Provide(injector, providers.ProvideSessionStore)
	do.Provide(injector, providers.ProvideLookupLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services, so configuration
// and database errors surface here rather than on the first request.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.TMDBClientHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.MovieService](injector)
	_ = do.MustInvoke[sessions.Store](injector)
	_ = do.MustInvoke[*providers.LookupLimiterHandle](injector)

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
