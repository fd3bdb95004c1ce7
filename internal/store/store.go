// Package store defines the persistence contract for movies.
package store

import (
	"context"

	"github.com/movieranker/movieranker/internal/domain"
)

// MovieField names a column movies can be ordered by.
type MovieField string

// Orderable movie fields.
const (
	FieldID      MovieField = "id"
	FieldTitle   MovieField = "title"
	FieldYear    MovieField = "year"
	FieldRating  MovieField = "rating"
	FieldRanking MovieField = "ranking"
)

// Valid reports whether f is one of the orderable fields.
func (f MovieField) Valid() bool {
	switch f {
	case FieldID, FieldTitle, FieldYear, FieldRating, FieldRanking:
		return true
	}
	return false
}

// MovieUpdate carries the fields to overwrite on an existing movie.
// Nil fields are left untouched.
type MovieUpdate struct {
	Rating  *float64
	Review  *string
	Ranking *int
}

// Empty reports whether the update changes nothing.
func (u MovieUpdate) Empty() bool {
	return u.Rating == nil && u.Review == nil && u.Ranking == nil
}

// Movies is the set of movie operations, available both directly on a
// Store and inside a transaction.
type Movies interface {
	// ListMovies returns every movie ascending by field, ties broken by id.
	ListMovies(ctx context.Context, orderBy MovieField) ([]*domain.Movie, error)
	GetMovie(ctx context.Context, id int64) (*domain.Movie, error)
	// CreateMovie assigns m.ID and the timestamps. Returns ErrDuplicateTitle
	// when the title is taken.
	CreateMovie(ctx context.Context, m *domain.Movie) error
	UpdateMovie(ctx context.Context, id int64, upd MovieUpdate) error
	DeleteMovie(ctx context.Context, id int64) error
}

// Store is a movie store with lifecycle and transaction control.
type Store interface {
	Movies

	// WithTx runs fn inside a single transaction. The transaction commits if
	// fn returns nil and rolls back on error or panic; it is always released.
	WithTx(ctx context.Context, fn func(tx Movies) error) error

	Ping(ctx context.Context) error
	Close() error
}
