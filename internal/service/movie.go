// Package service holds the movie ranker's use cases, orchestrating the store,
// the metadata lookup and input validation.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/movieranker/movieranker/internal/domain"
	domainerrors "github.com/movieranker/movieranker/internal/errors"
	"github.com/movieranker/movieranker/internal/metadata/tmdb"
	"github.com/movieranker/movieranker/internal/normalize"
	"github.com/movieranker/movieranker/internal/ranking"
	"github.com/movieranker/movieranker/internal/store"
	"github.com/movieranker/movieranker/internal/validation"
)

// Lookup finds movies in an external catalogue. *tmdb.Client satisfies it.
type Lookup interface {
	Search(ctx context.Context, query string) ([]tmdb.SearchResult, error)
	GetMovie(ctx context.Context, id int64) (*tmdb.MovieDetails, error)
}

// MovieService orchestrates the ranked movie list.
type MovieService struct {
	store     store.Store
	lookup    Lookup
	validator *validation.Validator
	logger    *slog.Logger
}

// NewMovieService creates a new movie service.
func NewMovieService(store store.Store, lookup Lookup, validator *validation.Validator, logger *slog.Logger) *MovieService {
	return &MovieService{
		store:     store,
		lookup:    lookup,
		validator: validator,
		logger:    logger,
	}
}

// RecomputeRankings re-derives every movie's ranking from rating order and
// persists it, all in one transaction. Every row is written even if its
// ranking did not change. The movies are returned ascending by rating with
// their new rankings.
func (s *MovieService) RecomputeRankings(ctx context.Context) ([]*domain.Movie, error) {
	var movies []*domain.Movie

	err := s.store.WithTx(ctx, func(tx store.Movies) error {
		list, err := tx.ListMovies(ctx, store.FieldRating)
		if err != nil {
			return err
		}

		for i, a := range ranking.Assign(list) {
			r := a.Ranking
			if err := tx.UpdateMovie(ctx, a.MovieID, store.MovieUpdate{Ranking: &r}); err != nil {
				return err
			}
			list[i].Ranking = &r
		}

		movies = list
		return nil
	})
	if err != nil {
		return nil, translate(err, "recompute rankings")
	}

	s.logger.Debug("rankings recomputed", "count", len(movies))
	return movies, nil
}

// GetMovie returns a single movie.
func (s *MovieService) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	m, err := s.store.GetMovie(ctx, id)
	if err != nil {
		return nil, translate(err, "get movie")
	}
	return m, nil
}

// SearchCandidates validates the add form and searches the catalogue for
// matching titles. Any lookup failure is reported as LookupFailed and
// nothing is written.
func (s *MovieService) SearchCandidates(ctx context.Context, form validation.AddMovieForm) ([]tmdb.SearchResult, error) {
	form.Title = normalize.Title(form.Title)
	if err := s.validator.Validate(form); err != nil {
		return nil, err
	}

	query := form.Title
	results, err := s.lookup.Search(ctx, query)
	if err != nil {
		s.logger.Warn("movie search failed", "query", query, "error", err)
		return nil, domainerrors.LookupFailed(err, "could not search for movies, try again")
	}

	s.logger.Debug("movie search", "query", query, "results", len(results))
	return results, nil
}

// AddFromLookup fetches a movie's details by its TMDB id and inserts it
// without a rating or review.
func (s *MovieService) AddFromLookup(ctx context.Context, tmdbID int64) (*domain.Movie, error) {
	if tmdbID <= 0 {
		return nil, domainerrors.ValidationWithDetails("invalid tmdb_id",
			map[string]string{"tmdb_id": "must be a positive integer"})
	}

	details, err := s.lookup.GetMovie(ctx, tmdbID)
	if err != nil {
		s.logger.Warn("movie details lookup failed", "tmdb_id", tmdbID, "error", err)
		return nil, domainerrors.LookupFailed(err, "could not fetch movie details, try again")
	}

	title := normalize.Title(details.Title)
	if title == "" {
		s.logger.Warn("movie details have no title", "tmdb_id", tmdbID)
		return nil, domainerrors.LookupFailed(nil, "movie details have no title")
	}

	m := &domain.Movie{
		Title:       title,
		Year:        details.Year,
		Description: details.Overview,
		ImgURL:      details.PosterURL,
	}

	err = s.store.WithTx(ctx, func(tx store.Movies) error {
		return tx.CreateMovie(ctx, m)
	})
	if errors.Is(err, store.ErrDuplicateTitle) {
		return nil, domainerrors.AlreadyExistsf("%q is already in your list", m.Title)
	}
	if err != nil {
		return nil, translate(err, "add movie")
	}

	s.logger.Info("movie added",
		"id", m.ID,
		"tmdb_id", tmdbID,
		"title", m.Title,
		"year", m.Year,
	)
	return m, nil
}

// UpdateReview validates the form and overwrites the movie's rating and
// review. No other field is touched.
func (s *MovieService) UpdateReview(ctx context.Context, id int64, form validation.UpdateMovieForm) (*domain.Movie, error) {
	if err := s.validator.Validate(form); err != nil {
		return nil, err
	}

	var updated *domain.Movie
	err := s.store.WithTx(ctx, func(tx store.Movies) error {
		review := form.Review
		if err := tx.UpdateMovie(ctx, id, store.MovieUpdate{
			Rating: form.Rating,
			Review: &review,
		}); err != nil {
			return err
		}

		m, err := tx.GetMovie(ctx, id)
		if err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, translate(err, "update movie")
	}

	s.logger.Info("movie reviewed", "id", id, "rating", *form.Rating)
	return updated, nil
}

// DeleteMovie removes a movie from the list.
func (s *MovieService) DeleteMovie(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(tx store.Movies) error {
		return tx.DeleteMovie(ctx, id)
	})
	if err != nil {
		return translate(err, "delete movie")
	}

	s.logger.Info("movie deleted", "id", id)
	return nil
}

// translate maps store errors onto domain errors. Domain errors pass through.
func translate(err error, op string) error {
	var domainErr *domainerrors.Error
	switch {
	case errors.As(err, &domainErr):
		return domainErr
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound("movie not found")
	case errors.Is(err, store.ErrDuplicateTitle):
		return domainerrors.Wrap(err, domainerrors.CodeAlreadyExists, "movie already exists")
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Wrap(err, domainerrors.CodeValidation, err.Error())
	default:
		return domainerrors.Wrapf(err, domainerrors.CodeInternal, "%s failed", op)
	}
}
