package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/movieranker/movieranker/internal/domain"
	"github.com/movieranker/movieranker/internal/store"
)

// movieColumns is the ordered list of columns selected in movie queries.
// Must match the scan order in scanMovie.
const movieColumns = `id, title, year, description, rating, ranking, review, img_url, created_at, updated_at`

// movieRepo runs movie queries against either the pool or a transaction.
type movieRepo struct {
	q querier
}

// scanMovie scans a sql.Row (or sql.Rows via its Scan method) into a domain.Movie.
func scanMovie(scanner interface{ Scan(dest ...any) error }) (*domain.Movie, error) {
	var m domain.Movie

	var (
		rating    sql.NullFloat64
		ranking   sql.NullInt64
		review    sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&m.ID,
		&m.Title,
		&m.Year,
		&m.Description,
		&rating,
		&ranking,
		&review,
		&m.ImgURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		m.Rating = &rating.Float64
	}
	if ranking.Valid {
		r := int(ranking.Int64)
		m.Ranking = &r
	}
	if review.Valid {
		m.Review = &review.String
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// ListMovies returns all movies ascending by the given field.
// Unrated movies sort first when ordering by rating or ranking.
func (r *movieRepo) ListMovies(ctx context.Context, orderBy store.MovieField) ([]*domain.Movie, error) {
	if !orderBy.Valid() {
		return nil, store.ErrInvalidInput.WithMessage(fmt.Sprintf("cannot order movies by %q", orderBy))
	}

	// orderBy is whitelisted above, so it is safe to splice into the query.
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY `+string(orderBy)+` ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []*domain.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if movies == nil {
		movies = []*domain.Movie{}
	}

	return movies, nil
}

// GetMovie retrieves a movie by its ID.
// Returns store.ErrNotFound if the movie does not exist.
func (r *movieRepo) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)

	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateMovie inserts a new movie and assigns its ID.
// Returns store.ErrDuplicateTitle if the title is already taken.
func (r *movieRepo) CreateMovie(ctx context.Context, m *domain.Movie) error {
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}

	res, err := r.q.ExecContext(ctx, `
		INSERT INTO movies (title, year, description, rating, ranking, review, img_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Title,
		m.Year,
		m.Description,
		nullFloat(m.Rating),
		nullInt(m.Ranking),
		nullString(m.Review),
		m.ImgURL,
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrDuplicateTitle.WithMessage(fmt.Sprintf("movie %q already exists", m.Title)).WithCause(err)
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	return nil
}

// UpdateMovie overwrites the non-nil fields of upd on the movie.
// Rating and review changes bump updated_at; ranking is derived and does not.
// Returns store.ErrNotFound if the movie does not exist.
func (r *movieRepo) UpdateMovie(ctx context.Context, id int64, upd store.MovieUpdate) error {
	if upd.Empty() {
		return r.exists(ctx, id)
	}

	var (
		sets []string
		args []any
	)

	if upd.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *upd.Rating)
	}
	if upd.Review != nil {
		sets = append(sets, "review = ?")
		args = append(args, *upd.Review)
	}
	if upd.Rating != nil || upd.Review != nil {
		sets = append(sets, "updated_at = ?")
		args = append(args, formatTime(time.Now()))
	}
	if upd.Ranking != nil {
		sets = append(sets, "ranking = ?")
		args = append(args, *upd.Ranking)
	}

	args = append(args, id)
	res, err := r.q.ExecContext(ctx,
		`UPDATE movies SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteMovie removes a movie by its ID.
// Returns store.ErrNotFound if the movie does not exist.
func (r *movieRepo) DeleteMovie(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *movieRepo) exists(ctx context.Context, id int64) error {
	var one int
	err := r.q.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
