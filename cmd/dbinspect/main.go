// Package main prints the movies table for inspection. It never writes.
//
// Usage:
//
//	DB_PATH=./movielist.db go run ./cmd/dbinspect -order ranking
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/movieranker/movieranker/internal/store"
	"github.com/movieranker/movieranker/internal/store/sqlite"
)

func main() {
	dbPath := flag.String("db", os.Getenv("DB_PATH"), "SQLite database file")
	order := flag.String("order", string(store.FieldRating), "order by: id, title, year, rating or ranking")
	flag.Parse()

	if *dbPath == "" {
		*dbPath = "./movielist.db"
	}

	field := store.MovieField(strings.ToLower(*order))
	if !field.Valid() {
		log.Fatalf("Unknown order field %q", *order)
	}

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Database not found: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	db, err := sqlite.Open(*dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	movies, err := db.ListMovies(context.Background(), field)
	if err != nil {
		log.Fatalf("Failed to list movies: %v", err)
	}

	fmt.Println("=== Database Inspection ===")
	fmt.Printf("Path: %s\nOrder: %s\n\n", *dbPath, field)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRANK\tRATING\tYEAR\tTITLE\tREVIEW")
	rated := 0
	for _, m := range movies {
		rank, rating, review := "-", "-", "-"
		if m.Ranking != nil {
			rank = fmt.Sprint(*m.Ranking)
		}
		if m.Rating != nil {
			rating = fmt.Sprint(*m.Rating)
			rated++
		}
		if m.Review != nil {
			review = *m.Review
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", m.ID, rank, rating, m.Year, m.Title, review)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d movies (%d rated, %d unrated)\n", len(movies), rated, len(movies)-rated)
}
