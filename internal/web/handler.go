// Package web serves the server-rendered HTML pages of the movie ranker.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/movieranker/movieranker/internal/domain"
	domainerrors "github.com/movieranker/movieranker/internal/errors"
	"github.com/movieranker/movieranker/internal/metadata/tmdb"
	"github.com/movieranker/movieranker/internal/validation"
)

// MovieService is the subset of the movie use cases the pages need.
type MovieService interface {
	RecomputeRankings(ctx context.Context) ([]*domain.Movie, error)
	GetMovie(ctx context.Context, id int64) (*domain.Movie, error)
	SearchCandidates(ctx context.Context, form validation.AddMovieForm) ([]tmdb.SearchResult, error)
	AddFromLookup(ctx context.Context, tmdbID int64) (*domain.Movie, error)
	UpdateReview(ctx context.Context, id int64, form validation.UpdateMovieForm) (*domain.Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
}

// Handler serves the HTML routes.
type Handler struct {
	movies    MovieService
	validator *validation.Validator
	flashes   *Flashes
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewHandler parses the embedded templates and returns a ready handler.
func NewHandler(movies MovieService, validator *validation.Validator, flashes *Flashes, logger *slog.Logger) (*Handler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Handler{
		movies:    movies,
		validator: validator,
		flashes:   flashes,
		templates: templates,
		logger:    logger,
	}, nil
}

// Register mounts the HTML routes on r. lookupLimit wraps the routes that
// call out to TMDB and protect wraps every page route; pass nil to leave
// either out.
func (h *Handler) Register(r chi.Router, lookupLimit, protect func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if protect != nil {
			r.Use(protect)
		}

		limited := r.With()
		if lookupLimit != nil {
			limited = r.With(lookupLimit)
		}

		r.Get("/", h.handleIndex)

		r.Get("/update", h.handleEditForm)
		r.Post("/update", h.handleUpdate)

		r.Get("/delete", h.handleDelete)
		r.Post("/delete", h.handleDelete)

		r.Get("/add", h.handleAddForm)
		limited.Post("/add", h.handleAdd)
		limited.Get("/find", h.handleFind)
	})
}

// RejectTooManyRequests renders the rate limit page.
func (h *Handler) RejectTooManyRequests(w http.ResponseWriter, r *http.Request) {
	h.renderStatus(w, r, http.StatusTooManyRequests, "Too many lookups. Wait a moment and try again.")
}

// handleIndex re-ranks every movie and lists them ascending by rating.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.RecomputeRankings(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, pageIndex, &pageData{
		Flashes: h.flashes.Pop(w, r),
		Movies:  movies,
	})
}

func (h *Handler) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}

	movie, err := h.movies.GetMovie(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	form := formValues{}
	if movie.Rating != nil {
		form.Rating = strconv.FormatFloat(*movie.Rating, 'f', -1, 64)
	}
	if movie.Review != nil {
		form.Review = *movie.Review
	}

	h.render(w, r, http.StatusOK, pageEdit, &pageData{
		Flashes: h.flashes.Pop(w, r),
		Movie:   movie,
		Form:    form,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "Could not read the submitted form.")
		return
	}

	form, err := h.validator.ParseUpdateMovieForm(r.PostForm)
	if err == nil {
		_, err = h.movies.UpdateReview(r.Context(), id, form)
	}

	if err != nil && domainerrors.CodeOf(err) == domainerrors.CodeValidation {
		movie, getErr := h.movies.GetMovie(r.Context(), id)
		if getErr != nil {
			h.handleError(w, r, getErr)
			return
		}
		h.render(w, r, http.StatusUnprocessableEntity, pageEdit, &pageData{
			Movie: movie,
			Form: formValues{
				Rating: r.PostForm.Get("rating"),
				Review: r.PostForm.Get("review"),
			},
			Errors: fieldErrors(err),
		})
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}

	if err := h.movies.DeleteMovie(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleAddForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageAdd, &pageData{
		Flashes: h.flashes.Pop(w, r),
	})
}

// handleAdd searches TMDB for the submitted title and lists the candidates.
func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "Could not read the submitted form.")
		return
	}

	form, err := h.validator.ParseAddMovieForm(r.PostForm)
	var results []tmdb.SearchResult
	if err == nil {
		results, err = h.movies.SearchCandidates(r.Context(), form)
	}

	if err != nil {
		switch domainerrors.CodeOf(err) {
		case domainerrors.CodeValidation:
			h.render(w, r, http.StatusUnprocessableEntity, pageAdd, &pageData{
				Form:   formValues{Title: r.PostForm.Get("title")},
				Errors: fieldErrors(err),
			})
		case domainerrors.CodeLookupFailed:
			h.flashAndRedirect(w, r, "Lookup failed, try again.", "/add")
		default:
			h.handleError(w, r, err)
		}
		return
	}

	h.render(w, r, http.StatusOK, pageSelect, &pageData{
		Results: results,
	})
}

// handleFind adds the chosen candidate and sends the user on to rate it.
func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.ParseInt(r.URL.Query().Get("tmdb_id"), 10, 64)
	if err != nil || tmdbID <= 0 {
		h.renderStatus(w, r, http.StatusBadRequest, "A valid tmdb_id is required.")
		return
	}

	movie, err := h.movies.AddFromLookup(r.Context(), tmdbID)
	if err != nil {
		switch domainerrors.CodeOf(err) {
		case domainerrors.CodeAlreadyExists:
			h.flashAndRedirect(w, r, messageOf(err), "/")
		case domainerrors.CodeLookupFailed:
			h.flashAndRedirect(w, r, "Lookup failed, try again.", "/add")
		default:
			h.handleError(w, r, err)
		}
		return
	}

	h.flashAndRedirect(w, r, fmt.Sprintf("Added %q. Give it a rating.", movie.Title), "/update?id="+strconv.FormatInt(movie.ID, 10))
}

// movieID reads the id query parameter, answering 400 when it is not a
// positive integer.
func (h *Handler) movieID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		h.renderStatus(w, r, http.StatusBadRequest, "A valid movie id is required.")
		return 0, false
	}
	return id, true
}

func (h *Handler) flashAndRedirect(w http.ResponseWriter, r *http.Request, msg, to string) {
	if err := h.flashes.Add(w, r, msg); err != nil {
		h.log(r).Warn("save flash message", "error", err)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// handleError maps a domain error to an error page.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := domainerrors.CodeOf(err).HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.log(r).Error("request failed", "path", r.URL.Path, "error", err)
		h.renderStatus(w, r, status, "Something went wrong.")
		return
	}
	h.renderStatus(w, r, status, messageOf(err))
}

func (h *Handler) renderStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render(w, r, status, pageError, &pageData{
		Status:  status,
		Message: msg,
	})
}

func fieldErrors(err error) map[string]string {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.FieldErrors()
	}
	return nil
}

func messageOf(err error) string {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return err.Error()
}
