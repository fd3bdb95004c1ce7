package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/movieranker/movieranker/internal/validation"
)

func (s *Server) registerLookupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchMovies",
		Method:      http.MethodGet,
		Path:        "/lookup",
		Summary:     "Search TMDB",
		Description: "Searches The Movie Database by title. Nothing is stored.",
		Tags:        []string{"Lookup"},
		Middlewares: huma.Middlewares{s.lookupLimit},
	}, s.handleSearchMovies)
}

// SearchMoviesInput contains the search query.
type SearchMoviesInput struct {
	Query string `query:"query" doc:"Movie title to search for"`
}

// CandidateResponse is one TMDB search hit.
type CandidateResponse struct {
	TMDBID      int64  `json:"tmdb_id" doc:"TMDB movie id, pass to addMovie"`
	Title       string `json:"title" doc:"Title"`
	ReleaseDate string `json:"release_date,omitempty" doc:"Release date, YYYY-MM-DD"`
	Year        int    `json:"year,omitempty" doc:"Release year"`
	Overview    string `json:"overview,omitempty" doc:"Plot overview"`
	PosterURL   string `json:"poster_url,omitempty" doc:"Poster URL"`
}

// SearchMoviesResponse contains the candidates in TMDB relevance order.
type SearchMoviesResponse struct {
	Results []CandidateResponse `json:"results" doc:"Search candidates"`
}

// SearchMoviesOutput wraps the search response for Huma.
type SearchMoviesOutput struct {
	Body SearchMoviesResponse
}

func (s *Server) handleSearchMovies(ctx context.Context, input *SearchMoviesInput) (*SearchMoviesOutput, error) {
	results, err := s.movies.SearchCandidates(ctx, validation.AddMovieForm{Title: input.Query})
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	resp := make([]CandidateResponse, len(results))
	for i, r := range results {
		resp[i] = CandidateResponse{
			TMDBID:      r.ID,
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
			Year:        r.Year,
			Overview:    r.Overview,
			PosterURL:   r.PosterURL,
		}
	}

	return &SearchMoviesOutput{Body: SearchMoviesResponse{Results: resp}}, nil
}
