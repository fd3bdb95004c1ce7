// Package ranking derives list positions from rating order.
package ranking

import "github.com/movieranker/movieranker/internal/domain"

// Assignment is the ranking computed for one movie.
type Assignment struct {
	MovieID int64
	Ranking int
}

// Assign computes a dense ranking over movies, which must already be ordered
// ascending by rating. The movie at position i gets len(movies)-i, so the
// lowest rated movie is ranked N and the highest rated is ranked 1.
//
// Assign is pure: calling it twice on the same input yields the same result.
func Assign(movies []*domain.Movie) []Assignment {
	n := len(movies)
	out := make([]Assignment, n)
	for i, m := range movies {
		out[i] = Assignment{MovieID: m.ID, Ranking: n - i}
	}
	return out
}
