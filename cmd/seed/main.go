// Package main provides a tool to seed a database with sample movies.
//
// Titles that are already present are left alone, so it is safe to run
// repeatedly. Rankings are recomputed afterwards.
//
// Usage:
//
//	DB_PATH=./movielist.db go run ./cmd/seed
//	go run ./cmd/seed -db /tmp/movies.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/movieranker/movieranker/internal/domain"
	"github.com/movieranker/movieranker/internal/service"
	"github.com/movieranker/movieranker/internal/store"
	"github.com/movieranker/movieranker/internal/store/sqlite"
	"github.com/movieranker/movieranker/internal/validation"
)

var dbPath = flag.String("db", "", "SQLite database file (default: $DB_PATH or ./movielist.db)")

func ptr[T any](v T) *T { return &v }

var samples = []domain.Movie{
	{
		Title:       "Phone Booth",
		Year:        2002,
		Description: "Publicist Stuart Shepard finds himself trapped in a phone booth, pinned down by an extortionist's sniper rifle. Unable to leave or receive outside help, Stuart's negotiation with the caller leads to a jaw-dropping climax.",
		Rating:      ptr(7.3),
		Review:      ptr("My favourite character was the caller."),
		ImgURL:      "https://image.tmdb.org/t/p/w500/tjrX2oWRCM3Tvarz38zlZM7Uc10.jpg",
	},
	{
		Title:       "Avatar The Way of Water",
		Year:        2022,
		Description: "Set more than a decade after the events of the first film, learn the story of the Sully family (Jake, Neytiri, and their kids), the trouble that follows them, the lengths they go to keep each other safe, the battles they fight to stay alive, and the tragedies they endure.",
		Rating:      ptr(7.3),
		Review:      ptr("I liked the water."),
		ImgURL:      "https://image.tmdb.org/t/p/w500/t6HIqrRAclMCA60NsSmeqe9RmNV.jpg",
	},
}

func main() {
	flag.Parse()

	path := *dbPath
	if path == "" {
		path = os.Getenv("DB_PATH")
	}
	if path == "" {
		path = "./movielist.db"
	}

	fmt.Printf("Opening database at: %s\n", path)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := sqlite.Open(path, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	added, err := seed(context.Background(), s, logger)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\nSeeded %d of %d movies\n", added, len(samples))
}

// seed inserts the sample movies that are not present yet and recomputes
// every ranking. It returns how many movies were added.
func seed(ctx context.Context, s *sqlite.Store, logger *slog.Logger) (int, error) {
	added := 0
	for i := range samples {
		m := samples[i]
		err := s.CreateMovie(ctx, &m)
		if errors.Is(err, store.ErrDuplicateTitle) {
			fmt.Printf("  skip  %s (already present)\n", m.Title)
			continue
		}
		if err != nil {
			return added, fmt.Errorf("insert %q: %w", m.Title, err)
		}
		fmt.Printf("  added %s (id %d)\n", m.Title, m.ID)
		added++
	}

	// Ranking needs no metadata lookups.
	movies := service.NewMovieService(s, nil, validation.New(), logger)
	if _, err := movies.RecomputeRankings(ctx); err != nil {
		return added, fmt.Errorf("recompute rankings: %w", err)
	}

	return added, nil
}
