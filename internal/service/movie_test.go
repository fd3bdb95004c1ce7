package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movieranker/movieranker/internal/domain"
	domainerrors "github.com/movieranker/movieranker/internal/errors"
	"github.com/movieranker/movieranker/internal/metadata/tmdb"
	"github.com/movieranker/movieranker/internal/store"
	"github.com/movieranker/movieranker/internal/store/sqlite"
	"github.com/movieranker/movieranker/internal/validation"
)

// fakeLookup is an in-memory Lookup.
type fakeLookup struct {
	results   []tmdb.SearchResult
	details   map[int64]*tmdb.MovieDetails
	err       error
	searches  []string
	detailIDs []int64
}

func (f *fakeLookup) Search(_ context.Context, query string) ([]tmdb.SearchResult, error) {
	f.searches = append(f.searches, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeLookup) GetMovie(_ context.Context, id int64) (*tmdb.MovieDetails, error) {
	f.detailIDs = append(f.detailIDs, id)
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, &tmdb.Error{Op: "getMovie", MovieID: id, Err: tmdb.ErrNotFound}
	}
	return d, nil
}

func smile2() *tmdb.MovieDetails {
	return &tmdb.MovieDetails{
		ID:          1100782,
		Title:       "Smile 2",
		ReleaseDate: "2024-10-16",
		Year:        2024,
		Overview:    "About to embark on a new world tour...",
		PosterPath:  "/abc.jpg",
		PosterURL:   "https://image.tmdb.org/t/p/w500/abc.jpg",
	}
}

func setupTestService(t *testing.T, lookup *fakeLookup) (*MovieService, *sqlite.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "movies.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return NewMovieService(st, lookup, validation.New(), logger), st
}

func seed(t *testing.T, st store.Store, title string, rating *float64) *domain.Movie {
	t.Helper()
	m := &domain.Movie{Title: title, Year: 2000, Description: "desc", ImgURL: "https://example.com/p.jpg", Rating: rating}
	require.NoError(t, st.CreateMovie(context.Background(), m))
	return m
}

func ptr[T any](v T) *T { return &v }

func TestMovieService_RecomputeRankings(t *testing.T) {
	svc, st := setupTestService(t, &fakeLookup{})
	ctx := context.Background()

	worst := seed(t, st, "Worst", ptr(2.0))
	best := seed(t, st, "Best", ptr(9.5))
	middle := seed(t, st, "Middle", ptr(6.0))

	movies, err := svc.RecomputeRankings(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 3)

	// Returned ascending by rating with rankings attached.
	assert.Equal(t, worst.ID, movies[0].ID)
	assert.Equal(t, 3, *movies[0].Ranking)
	assert.Equal(t, 1, *movies[2].Ranking)

	// Persisted: the lowest rating holds N.
	want := map[int64]int{worst.ID: 3, middle.ID: 2, best.ID: 1}
	for id, rank := range want {
		m, err := st.GetMovie(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, m.Ranking)
		assert.Equal(t, rank, *m.Ranking, "movie %d", id)
	}
}

func TestMovieService_RecomputeRankings_DenseAndIdempotent(t *testing.T) {
	svc, st := setupTestService(t, &fakeLookup{})
	ctx := context.Background()

	for i, r := range []*float64{ptr(5.0), nil, ptr(7.5), ptr(5.0), ptr(1.0), nil} {
		seed(t, st, fmt.Sprintf("Movie %d", i), r)
	}

	first, err := svc.RecomputeRankings(ctx)
	require.NoError(t, err)
	second, err := svc.RecomputeRankings(ctx)
	require.NoError(t, err)

	seen := map[int]bool{}
	for i := range first {
		rank := *first[i].Ranking
		assert.False(t, seen[rank], "duplicate ranking %d", rank)
		seen[rank] = true
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, rank, *second[i].Ranking)
	}
	for rank := 1; rank <= len(first); rank++ {
		assert.True(t, seen[rank], "missing ranking %d", rank)
	}
}

func TestMovieService_RecomputeRankings_Empty(t *testing.T) {
	svc, _ := setupTestService(t, &fakeLookup{})

	movies, err := svc.RecomputeRankings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestMovieService_AddFromLookup(t *testing.T) {
	lookup := &fakeLookup{details: map[int64]*tmdb.MovieDetails{1100782: smile2()}}
	svc, st := setupTestService(t, lookup)
	ctx := context.Background()

	m, err := svc.AddFromLookup(ctx, 1100782)
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, []int64{1100782}, lookup.detailIDs)

	got, err := st.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smile 2", got.Title)
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, "About to embark on a new world tour...", got.Description)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", got.ImgURL)
	assert.Nil(t, got.Rating)
	assert.Nil(t, got.Review)

	all, err := st.ListMovies(ctx, store.FieldID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMovieService_AddFromLookup_Duplicate(t *testing.T) {
	lookup := &fakeLookup{details: map[int64]*tmdb.MovieDetails{1100782: smile2()}}
	svc, st := setupTestService(t, lookup)
	ctx := context.Background()

	_, err := svc.AddFromLookup(ctx, 1100782)
	require.NoError(t, err)

	_, err = svc.AddFromLookup(ctx, 1100782)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainerrors.CodeOf(err))

	all, err := st.ListMovies(ctx, store.FieldID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMovieService_AddFromLookup_LookupFailed(t *testing.T) {
	lookup := &fakeLookup{err: &tmdb.Error{Op: "getMovie", MovieID: 7, Err: tmdb.ErrServer}}
	svc, st := setupTestService(t, lookup)
	ctx := context.Background()

	_, err := svc.AddFromLookup(ctx, 7)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeLookupFailed, domainerrors.CodeOf(err))
	assert.ErrorIs(t, err, tmdb.ErrServer)

	all, err := st.ListMovies(ctx, store.FieldID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMovieService_AddFromLookup_BlankTitle(t *testing.T) {
	blank := smile2()
	blank.Title = " \t\n "
	lookup := &fakeLookup{details: map[int64]*tmdb.MovieDetails{1100782: blank}}
	svc, st := setupTestService(t, lookup)
	ctx := context.Background()

	_, err := svc.AddFromLookup(ctx, 1100782)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeLookupFailed, domainerrors.CodeOf(err))

	all, err := st.ListMovies(ctx, store.FieldID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMovieService_AddFromLookup_InvalidID(t *testing.T) {
	lookup := &fakeLookup{}
	svc, _ := setupTestService(t, lookup)

	_, err := svc.AddFromLookup(context.Background(), 0)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
	assert.Empty(t, lookup.detailIDs)
}

func TestMovieService_SearchCandidates(t *testing.T) {
	lookup := &fakeLookup{results: []tmdb.SearchResult{{ID: 1100782, Title: "Smile 2", Year: 2024}}}
	svc, _ := setupTestService(t, lookup)

	results, err := svc.SearchCandidates(context.Background(), validation.AddMovieForm{Title: " Smile  2 "})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"Smile 2"}, lookup.searches)
}

func TestMovieService_SearchCandidates_Validation(t *testing.T) {
	lookup := &fakeLookup{}
	svc, _ := setupTestService(t, lookup)

	_, err := svc.SearchCandidates(context.Background(), validation.AddMovieForm{})
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
	assert.Empty(t, lookup.searches, "validation must run before any lookup")
}

func TestMovieService_SearchCandidates_LookupFailed(t *testing.T) {
	lookup := &fakeLookup{err: &tmdb.Error{Op: "search", Err: tmdb.ErrNetwork}}
	svc, st := setupTestService(t, lookup)
	ctx := context.Background()
	seed(t, st, "Existing", ptr(5.0))

	results, err := svc.SearchCandidates(ctx, validation.AddMovieForm{Title: "Smile 2"})
	assert.Nil(t, results)
	assert.Equal(t, domainerrors.CodeLookupFailed, domainerrors.CodeOf(err))

	all, err := st.ListMovies(ctx, store.FieldID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMovieService_UpdateReview(t *testing.T) {
	svc, st := setupTestService(t, &fakeLookup{})
	ctx := context.Background()
	orig := seed(t, st, "Phone Booth", nil)

	updated, err := svc.UpdateReview(ctx, orig.ID, validation.UpdateMovieForm{Rating: ptr(8.5), Review: "Great"})
	require.NoError(t, err)

	assert.Equal(t, 8.5, *updated.Rating)
	assert.Equal(t, "Great", *updated.Review)
	assert.Equal(t, orig.Title, updated.Title)
	assert.Equal(t, orig.Year, updated.Year)
	assert.Equal(t, orig.Description, updated.Description)
	assert.Equal(t, orig.ImgURL, updated.ImgURL)
}

func TestMovieService_UpdateReview_NotFound(t *testing.T) {
	svc, st := setupTestService(t, &fakeLookup{})
	ctx := context.Background()
	other := seed(t, st, "Phone Booth", nil)

	_, err := svc.UpdateReview(ctx, other.ID+1, validation.UpdateMovieForm{Rating: ptr(3.0), Review: "Meh"})
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))

	got, err := st.GetMovie(ctx, other.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating)
}

func TestMovieService_UpdateReview_Validation(t *testing.T) {
	svc, st := setupTestService(t, &fakeLookup{})
	ctx := context.Background()
	m := seed(t, st, "Phone Booth", nil)

	_, err := svc.UpdateReview(ctx, m.ID, validation.UpdateMovieForm{Review: "No rating"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "is required", domainErr.FieldErrors()["rating"])
}

func TestMovieService_DeleteMovie(t *testing.T) {
	svc, st := setupTestService(t, &fakeLookup{})
	ctx := context.Background()
	keep := seed(t, st, "Keep", nil)
	drop := seed(t, st, "Drop", nil)

	require.NoError(t, svc.DeleteMovie(ctx, drop.ID))

	all, err := st.ListMovies(ctx, store.FieldID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)

	err = svc.DeleteMovie(ctx, drop.ID)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestMovieService_GetMovie_NotFound(t *testing.T) {
	svc, _ := setupTestService(t, &fakeLookup{})

	_, err := svc.GetMovie(context.Background(), 99)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}
