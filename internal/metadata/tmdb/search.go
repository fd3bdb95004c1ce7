package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Search searches TMDB for movies matching a free-text title.
// Results keep TMDB's relevance order.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, wrapError("search", 0, ErrBadRequest)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", "1")

	body, err := c.doRequest(ctx, "/search/movie", params)
	if err != nil {
		return nil, wrapError("search", 0, err)
	}

	var resp rawSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", 0, fmt.Errorf("%w: %v", ErrDecode, err))
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, m := range resp.Results {
		results = append(results, SearchResult{
			ID:          m.ID,
			Title:       m.Title,
			ReleaseDate: m.ReleaseDate,
			Year:        yearFromReleaseDate(m.ReleaseDate),
			Overview:    m.Overview,
			PosterPath:  m.PosterPath,
			PosterURL:   c.PosterURL(m.PosterPath),
		})
	}

	return results, nil
}

// GetMovie retrieves the full details of a movie by its TMDB id.
func (c *Client) GetMovie(ctx context.Context, id int64) (*MovieDetails, error) {
	if id <= 0 {
		return nil, wrapError("getMovie", id, ErrBadRequest)
	}

	body, err := c.doRequest(ctx, "/movie/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, wrapError("getMovie", id, err)
	}

	var m rawMovie
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, wrapError("getMovie", id, fmt.Errorf("%w: %v", ErrDecode, err))
	}
	if m.Title == "" {
		return nil, wrapError("getMovie", id, fmt.Errorf("%w: missing title", ErrDecode))
	}

	if m.ID == 0 {
		m.ID = id
	}

	return &MovieDetails{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate,
		Year:        yearFromReleaseDate(m.ReleaseDate),
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		PosterURL:   c.PosterURL(m.PosterPath),
	}, nil
}
