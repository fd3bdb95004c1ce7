package validation

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// AddMovieForm is the add-by-title search form.
type AddMovieForm struct {
	Title string `form:"title" json:"title" validate:"required"`
}

// UpdateMovieForm is the rating and review form.
// Rating is a pointer so that 0 is a valid rating while "missing" is not.
type UpdateMovieForm struct {
	Rating *float64 `form:"rating" json:"rating" validate:"required"`
	Review string   `form:"review" json:"review" validate:"required"`
}

// ParseAddMovieForm reads and validates an AddMovieForm from posted values.
// The form is returned even on failure so it can be re-rendered.
func (v *Validator) ParseAddMovieForm(values url.Values) (AddMovieForm, error) {
	form := AddMovieForm{
		Title: strings.TrimSpace(values.Get("title")),
	}
	return form, v.validate(form, nil)
}

// ParseUpdateMovieForm reads and validates an UpdateMovieForm from posted
// values. A rating that is present but not a number is reported as a field
// error rather than as missing.
func (v *Validator) ParseUpdateMovieForm(values url.Values) (UpdateMovieForm, error) {
	form := UpdateMovieForm{
		Review: strings.TrimSpace(values.Get("review")),
	}

	var parseErrors map[string]string
	if raw := strings.TrimSpace(values.Get("rating")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
			parseErrors = map[string]string{"rating": "must be a number"}
		} else {
			form.Rating = &rating
		}
	}

	return form, v.validate(form, parseErrors)
}
