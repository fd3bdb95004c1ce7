package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movieranker/movieranker/internal/domain"
	"github.com/movieranker/movieranker/internal/metadata/tmdb"
	"github.com/movieranker/movieranker/internal/ratelimit"
	"github.com/movieranker/movieranker/internal/service"
	"github.com/movieranker/movieranker/internal/store"
	"github.com/movieranker/movieranker/internal/store/sqlite"
	"github.com/movieranker/movieranker/internal/validation"
)

type fakeLookup struct {
	details map[int64]*tmdb.MovieDetails
	results []tmdb.SearchResult
	err     error
}

func (f *fakeLookup) Search(_ context.Context, _ string) ([]tmdb.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeLookup) GetMovie(_ context.Context, id int64) (*tmdb.MovieDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, &tmdb.Error{Op: "getMovie", MovieID: id, Err: tmdb.ErrNotFound}
	}
	return d, nil
}

type apiTestServer struct {
	api    humatest.TestAPI
	router chi.Router
	store  *sqlite.Store
	lookup *fakeLookup
}

func setupAPITestServer(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *apiTestServer {
	t.Helper()
	return newAPITestServer(t, limiter, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func newAPITestServer(t *testing.T, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *apiTestServer {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "movies.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	lookup := &fakeLookup{
		details: map[int64]*tmdb.MovieDetails{
			1100782: {
				ID:          1100782,
				Title:       "Smile 2",
				ReleaseDate: "2024-10-16",
				Year:        2024,
				Overview:    "About to embark on a new world tour...",
				PosterPath:  "/abc.jpg",
				PosterURL:   "https://image.tmdb.org/t/p/w500/abc.jpg",
			},
		},
		results: []tmdb.SearchResult{
			{ID: 1100782, Title: "Smile 2", ReleaseDate: "2024-10-16", Year: 2024},
			{ID: 882598, Title: "Smile", ReleaseDate: "2022-09-23", Year: 2022},
		},
	}

	svc := service.NewMovieService(st, lookup, validation.New(), logger)

	router := chi.NewRouter()
	s := NewServer(svc, st, limiter, logger)
	s.Mount(router)

	return &apiTestServer{
		api:    humatest.Wrap(t, s.API()),
		router: router,
		store:  st,
		lookup: lookup,
	}
}

func (ts *apiTestServer) seed(t *testing.T, title string, rating *float64) *domain.Movie {
	t.Helper()
	m := &domain.Movie{Title: title, Year: 2002, Description: "desc", ImgURL: "https://example.com/p.jpg", Rating: rating}
	require.NoError(t, ts.store.CreateMovie(context.Background(), m))
	return m
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func ptr[T any](v T) *T { return &v }

func TestHealthCheck(t *testing.T) {
	ts := setupAPITestServer(t, nil)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[HealthResponse](t, resp)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	ts := setupAPITestServer(t, nil)
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "unhealthy", decode[HealthResponse](t, resp).Status)
}

func TestListMovies_Ranked(t *testing.T) {
	ts := setupAPITestServer(t, nil)
	ts.seed(t, "Phone Booth", ptr(6.0))
	ts.seed(t, "Avatar The Way of Water", ptr(7.3))
	ts.seed(t, "Unrated", nil)

	resp := ts.api.Get("/movies")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[ListMoviesResponse](t, resp)
	require.Len(t, body.Movies, 3)
	assert.Equal(t, "Unrated", body.Movies[0].Title)
	assert.Equal(t, 3, *body.Movies[0].Ranking)
	assert.Equal(t, "Avatar The Way of Water", body.Movies[2].Title)
	assert.Equal(t, 1, *body.Movies[2].Ranking)
}

func TestListMovies_StoreFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	ts := newAPITestServer(t, nil, slog.New(slog.NewJSONHandler(&buf, nil)))

	resp := ts.api.Get("/movies/999")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.NotContains(t, buf.String(), `"msg":"request failed"`)

	require.NoError(t, ts.store.Close())

	resp = ts.api.Get("/movies")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "INTERNAL_ERROR", decode[APIError](t, resp).Code)

	out := buf.String()
	assert.Contains(t, out, `"msg":"request failed"`)
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, "database is closed")
}

func TestGetMovie(t *testing.T) {
	ts := setupAPITestServer(t, nil)
	m := ts.seed(t, "Phone Booth", ptr(6.0))

	resp := ts.api.Get("/movies/" + strconv.FormatInt(m.ID, 10))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Phone Booth", decode[MovieResponse](t, resp).Title)

	resp = ts.api.Get("/movies/999")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[APIError](t, resp).Code)
}

func TestAddMovie(t *testing.T) {
	ts := setupAPITestServer(t, nil)

	resp := ts.api.Post("/movies", map[string]any{"tmdb_id": 1100782})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	created := decode[MovieResponse](t, resp)
	assert.Equal(t, "Smile 2", created.Title)
	assert.Equal(t, 2024, created.Year)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", created.ImgURL)
	assert.Nil(t, created.Rating)
	assert.Nil(t, created.Review)

	// Same title again is a conflict and nothing new is stored.
	resp = ts.api.Post("/movies", map[string]any{"tmdb_id": 1100782})
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "ALREADY_EXISTS", decode[APIError](t, resp).Code)

	all, err := ts.store.ListMovies(context.Background(), store.FieldID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddMovie_InvalidBody(t *testing.T) {
	ts := setupAPITestServer(t, nil)

	resp := ts.api.Post("/movies", map[string]any{"tmdb_id": 0})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[APIError](t, resp).Code)
}

func TestAddMovie_LookupFailed(t *testing.T) {
	ts := setupAPITestServer(t, nil)
	ts.lookup.err = &tmdb.Error{Op: "getMovie", MovieID: 1100782, Err: tmdb.ErrServer}

	resp := ts.api.Post("/movies", map[string]any{"tmdb_id": 1100782})
	require.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "LOOKUP_FAILED", decode[APIError](t, resp).Code)
}

func TestUpdateMovie(t *testing.T) {
	ts := setupAPITestServer(t, nil)
	m := ts.seed(t, "Phone Booth", nil)
	path := "/movies/" + strconv.FormatInt(m.ID, 10)

	resp := ts.api.Patch(path, map[string]any{"rating": 8.5, "review": "Great"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	updated := decode[MovieResponse](t, resp)
	assert.Equal(t, 8.5, *updated.Rating)
	assert.Equal(t, "Great", *updated.Review)
	assert.Equal(t, m.Title, updated.Title)
	assert.Equal(t, m.ImgURL, updated.ImgURL)
}

func TestUpdateMovie_Validation(t *testing.T) {
	ts := setupAPITestServer(t, nil)
	m := ts.seed(t, "Phone Booth", nil)

	resp := ts.api.Patch("/movies/"+strconv.FormatInt(m.ID, 10), map[string]any{"review": "Great"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "is required", body.Details["rating"])
}

func TestUpdateMovie_NotFound(t *testing.T) {
	ts := setupAPITestServer(t, nil)

	resp := ts.api.Patch("/movies/42", map[string]any{"rating": 3, "review": "Meh"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteMovie(t *testing.T) {
	ts := setupAPITestServer(t, nil)
	m := ts.seed(t, "Phone Booth", nil)
	path := "/movies/" + strconv.FormatInt(m.ID, 10)

	resp := ts.api.Delete(path)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Delete(path)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchMovies(t *testing.T) {
	ts := setupAPITestServer(t, nil)

	resp := ts.api.Get("/lookup?query=smile")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[SearchMoviesResponse](t, resp)
	require.Len(t, body.Results, 2)
	assert.Equal(t, int64(1100782), body.Results[0].TMDBID)
	assert.Equal(t, 2024, body.Results[0].Year)
}

func TestSearchMovies_Errors(t *testing.T) {
	ts := setupAPITestServer(t, nil)

	resp := ts.api.Get("/lookup?query=%20%20")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	ts.lookup.err = &tmdb.Error{Op: "search", Err: tmdb.ErrNetwork}
	resp = ts.api.Get("/lookup?query=smile")
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "LOOKUP_FAILED", decode[APIError](t, resp).Code)
}

func TestLookupRateLimit(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	defer limiter.Stop()
	ts := setupAPITestServer(t, limiter)

	resp := ts.api.Get("/lookup?query=smile")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/lookup?query=smile")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decode[APIError](t, resp).Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, ts.api.Get("/movies").Code)
}

func TestMount_PrefixAndCORS(t *testing.T) {
	ts := setupAPITestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, BasePath+"/health", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
