package ranking

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movieranker/movieranker/internal/domain"
)

func movies(ids ...int64) []*domain.Movie {
	out := make([]*domain.Movie, len(ids))
	for i, id := range ids {
		out[i] = &domain.Movie{ID: id}
	}
	return out
}

func TestAssign_Empty(t *testing.T) {
	assert.Empty(t, Assign(nil))
	assert.Empty(t, Assign([]*domain.Movie{}))
}

func TestAssign_LowestRatedGetsN(t *testing.T) {
	// Ordered ascending by rating: 30 is the worst, 10 the best.
	got := Assign(movies(30, 20, 10))

	require.Len(t, got, 3)
	assert.Equal(t, Assignment{MovieID: 30, Ranking: 3}, got[0])
	assert.Equal(t, Assignment{MovieID: 20, Ranking: 2}, got[1])
	assert.Equal(t, Assignment{MovieID: 10, Ranking: 1}, got[2])
}

func TestAssign_DenseRange(t *testing.T) {
	for _, n := range []int{1, 2, 7, 50} {
		ids := make([]int64, n)
		for i := range ids {
			ids[i] = int64(i + 100)
		}

		got := Assign(movies(ids...))

		ranks := make([]int, 0, n)
		for _, a := range got {
			ranks = append(ranks, a.Ranking)
		}
		sort.Ints(ranks)

		want := make([]int, n)
		for i := range want {
			want[i] = i + 1
		}
		assert.Equal(t, want, ranks, "n=%d", n)
	}
}

func TestAssign_Idempotent(t *testing.T) {
	in := movies(4, 2, 9, 1)
	assert.Equal(t, Assign(in), Assign(in))
}
