package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movieranker/movieranker/internal/store"
	"github.com/movieranker/movieranker/internal/store/sqlite"
)

func TestSeed_AddsOnceAndRanks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "movies.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	added, err := seed(ctx, s, logger)
	require.NoError(t, err)
	assert.Equal(t, len(samples), added)

	added, err = seed(ctx, s, logger)
	require.NoError(t, err)
	assert.Zero(t, added)

	movies, err := s.ListMovies(ctx, store.FieldRanking)
	require.NoError(t, err)
	require.Len(t, movies, len(samples))
	for i, m := range movies {
		require.NotNil(t, m.Ranking, m.Title)
		assert.Equal(t, i+1, *m.Ranking)
	}
}
