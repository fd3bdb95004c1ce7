package tmdb

import (
	"strconv"
	"strings"
)

// SearchResult is one candidate returned by a title search.
type SearchResult struct {
	ID          int64
	Title       string
	ReleaseDate string // YYYY-MM-DD, may be empty
	Year        int    // 0 when ReleaseDate is missing or malformed
	Overview    string
	PosterPath  string
	PosterURL   string
}

// MovieDetails is the full record for a single movie.
type MovieDetails struct {
	ID          int64
	Title       string
	ReleaseDate string
	Year        int
	Overview    string
	PosterPath  string
	PosterURL   string
}

// Raw API response types (internal)

type rawMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

type rawSearchResponse struct {
	Page         int        `json:"page"`
	Results      []rawMovie `json:"results"`
	TotalResults int        `json:"total_results"`
}

// yearFromReleaseDate returns the leading four-digit year of a TMDB date.
func yearFromReleaseDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// posterURL joins the image base and a TMDB poster path.
func posterURL(imageBase, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(imageBase, "/") + "/" + strings.TrimLeft(path, "/")
}
