package tmdb

import (
	"errors"
	"fmt"
)

// Sentinel errors for TMDB API operations.
var (
	ErrMissingToken = errors.New("tmdb: API token is not configured")
	ErrUnauthorized = errors.New("tmdb: unauthorized")
	ErrNotFound     = errors.New("tmdb: not found")
	ErrRateLimited  = errors.New("tmdb: rate limited by server")
	ErrBadRequest   = errors.New("tmdb: bad request")
	ErrServer       = errors.New("tmdb: server error")
	ErrNetwork      = errors.New("tmdb: network failure")
	ErrDecode       = errors.New("tmdb: malformed response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op      string // Operation: "search", "getMovie"
	MovieID int64  // If applicable
	Err     error
}

func (e *Error) Error() string {
	if e.MovieID != 0 {
		return fmt.Sprintf("tmdb %s [%d]: %v", e.Op, e.MovieID, e.Err)
	}
	return fmt.Sprintf("tmdb %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op string, movieID int64, err error) error {
	return &Error{
		Op:      op,
		MovieID: movieID,
		Err:     err,
	}
}
