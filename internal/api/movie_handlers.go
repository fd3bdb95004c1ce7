package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/movieranker/movieranker/internal/domain"
	"github.com/movieranker/movieranker/internal/validation"
)

func (s *Server) registerMovieRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMovies",
		Method:      http.MethodGet,
		Path:        "/movies",
		Summary:     "List movies",
		Description: "Recomputes rankings and returns every movie, ascending by rating",
		Tags:        []string{"Movies"},
	}, s.handleListMovies)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMovie",
		Method:      http.MethodGet,
		Path:        "/movies/{id}",
		Summary:     "Get movie",
		Description: "Returns a movie by ID",
		Tags:        []string{"Movies"},
	}, s.handleGetMovie)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addMovie",
		Method:        http.MethodPost,
		Path:          "/movies",
		Summary:       "Add movie",
		Description:   "Fetches a movie from TMDB by its id and adds it unrated",
		Tags:          []string{"Movies"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.lookupLimit},
	}, s.handleAddMovie)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMovie",
		Method:      http.MethodPatch,
		Path:        "/movies/{id}",
		Summary:     "Rate movie",
		Description: "Sets the rating and review of a movie",
		Tags:        []string{"Movies"},
	}, s.handleUpdateMovie)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteMovie",
		Method:        http.MethodDelete,
		Path:          "/movies/{id}",
		Summary:       "Delete movie",
		Description:   "Removes a movie from the list",
		Tags:          []string{"Movies"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteMovie)
}

// === DTOs ===

// MovieResponse contains movie data in API responses.
type MovieResponse struct {
	ID          int64     `json:"id" doc:"Movie ID"`
	Title       string    `json:"title" doc:"Title"`
	Year        int       `json:"year" doc:"Release year"`
	Description string    `json:"description" doc:"Plot overview"`
	Rating      *float64  `json:"rating" doc:"Your rating, null until rated"`
	Ranking     *int      `json:"ranking" doc:"Rank in the list, 1 is the best"`
	Review      *string   `json:"review" doc:"Your review, null until reviewed"`
	ImgURL      string    `json:"img_url" doc:"Poster URL"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// ListMoviesResponse contains the ranked list.
type ListMoviesResponse struct {
	Movies []MovieResponse `json:"movies" doc:"Movies ascending by rating"`
}

// ListMoviesOutput wraps the list response for Huma.
type ListMoviesOutput struct {
	Body ListMoviesResponse
}

// MovieOutput wraps a single movie for Huma.
type MovieOutput struct {
	Body MovieResponse
}

// MovieIDInput identifies a movie by path.
type MovieIDInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Movie ID"`
}

// AddMovieRequest is the request body for adding a movie.
type AddMovieRequest struct {
	TMDBID int64 `json:"tmdb_id" minimum:"1" doc:"TMDB movie id, as returned by searchMovies"`
}

// AddMovieInput wraps the add request for Huma.
type AddMovieInput struct {
	Body AddMovieRequest
}

// UpdateMovieRequest is the request body for rating a movie.
// Both fields are checked by the movie validator so missing ones are reported
// per field.
type UpdateMovieRequest struct {
	Rating *float64 `json:"rating,omitempty" doc:"Rating out of 10, e.g. 7.5"`
	Review string   `json:"review,omitempty" doc:"Review text"`
}

// UpdateMovieInput wraps the update request for Huma.
type UpdateMovieInput struct {
	ID   int64 `path:"id" minimum:"1" doc:"Movie ID"`
	Body UpdateMovieRequest
}

func toMovieResponse(m *domain.Movie) MovieResponse {
	return MovieResponse{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Ranking:     m.Ranking,
		Review:      m.Review,
		ImgURL:      m.ImgURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleListMovies(ctx context.Context, _ *struct{}) (*ListMoviesOutput, error) {
	movies, err := s.movies.RecomputeRankings(ctx)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	resp := make([]MovieResponse, len(movies))
	for i, m := range movies {
		resp[i] = toMovieResponse(m)
	}

	return &ListMoviesOutput{Body: ListMoviesResponse{Movies: resp}}, nil
}

func (s *Server) handleGetMovie(ctx context.Context, input *MovieIDInput) (*MovieOutput, error) {
	m, err := s.movies.GetMovie(ctx, input.ID)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &MovieOutput{Body: toMovieResponse(m)}, nil
}

func (s *Server) handleAddMovie(ctx context.Context, input *AddMovieInput) (*MovieOutput, error) {
	m, err := s.movies.AddFromLookup(ctx, input.Body.TMDBID)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &MovieOutput{Body: toMovieResponse(m)}, nil
}

func (s *Server) handleUpdateMovie(ctx context.Context, input *UpdateMovieInput) (*MovieOutput, error) {
	form := validation.UpdateMovieForm{
		Rating: input.Body.Rating,
		Review: strings.TrimSpace(input.Body.Review),
	}

	m, err := s.movies.UpdateReview(ctx, input.ID, form)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &MovieOutput{Body: toMovieResponse(m)}, nil
}

func (s *Server) handleDeleteMovie(ctx context.Context, input *MovieIDInput) (*struct{}, error) {
	if err := s.movies.DeleteMovie(ctx, input.ID); err != nil {
		return nil, s.apiError(ctx, err)
	}
	return nil, nil
}
