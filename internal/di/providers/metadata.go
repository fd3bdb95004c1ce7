package providers

import (
	"github.com/samber/do/v2"

	"github.com/movieranker/movieranker/internal/config"
	"github.com/movieranker/movieranker/internal/logger"
	"github.com/movieranker/movieranker/internal/metadata/tmdb"
)

// TMDBClientHandle wraps the TMDB client with shutdown capability.
type TMDBClientHandle struct {
	*tmdb.Client
}

// Shutdown implements do.Shutdownable.
func (h *TMDBClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideTMDBClient provides The Movie Database API client.
func ProvideTMDBClient(i do.Injector) (*TMDBClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := tmdb.New(tmdb.Config{
		Token:        cfg.TMDB.Token,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Language:     cfg.TMDB.Language,
		Timeout:      cfg.TMDB.Timeout,
		RPS:          cfg.TMDB.RateLimit,
	}, log.WithField("component", "tmdb").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("TMDB client initialized",
		"base_url", cfg.TMDB.BaseURL,
		"language", cfg.TMDB.Language,
	)

	return &TMDBClientHandle{Client: client}, nil
}
