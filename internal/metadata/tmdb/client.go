// Package tmdb is a client for the subset of The Movie Database API used to
// find movies and fetch their details.
package tmdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultImageBaseURL serves posters at 500px width.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

	defaultLanguage = "en-US"
	defaultTimeout  = 10 * time.Second

	// TMDB allows roughly 50 requests per second; stay well below it.
	defaultRPS   = 20.0
	defaultBurst = 5

	maxBodyBytes = 4 << 20
)

// Config configures a Client. Only Token is required.
type Config struct {
	Token        string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Timeout      time.Duration
	RPS          float64
	Burst        int
}

// Client is a rate-limited TMDB API client authenticated with a bearer token.
type Client struct {
	http         *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
	token        string
	baseURL      string
	imageBaseURL string
	language     string
}

// New creates a new TMDB client. It fails with ErrMissingToken when no token
// is configured.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrMissingToken
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		logger:       logger,
		token:        cfg.Token,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: cfg.ImageBaseURL,
		language:     cfg.Language,
	}, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// PosterURL builds the full image URL for a poster path.
func (c *Client) PosterURL(path string) string {
	return posterURL(c.imageBaseURL, path)
}

// doRequest executes an authenticated GET with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "MovieRanker/1.0")

	c.logger.Debug("tmdb request",
		"path", path,
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	c.logger.Debug("tmdb response",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrBadRequest, resp.StatusCode)
	}
}
