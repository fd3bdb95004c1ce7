// Package domain holds the core types of the movie ranker.
package domain

import "time"

// Movie is a single entry in the user's ranked list.
// Rating, Ranking and Review stay nil until the user fills them in; a movie
// fresh from a metadata lookup only carries the catalogue fields.
type Movie struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Year        int       `json:"year"`
	Description string    `json:"description"`
	Rating      *float64  `json:"rating"`
	Ranking     *int      `json:"ranking"`
	Review      *string   `json:"review"`
	ImgURL      string    `json:"img_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsRated reports whether the user has rated the movie.
func (m *Movie) IsRated() bool {
	return m.Rating != nil
}
