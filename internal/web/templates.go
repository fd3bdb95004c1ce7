package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"

	"github.com/movieranker/movieranker/internal/domain"
	"github.com/movieranker/movieranker/internal/metadata/tmdb"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex  = "index.html"
	pageAdd    = "add.html"
	pageSelect = "select.html"
	pageEdit   = "edit.html"
	pageError  = "error.html"
)

// formValues echoes submitted input back into a re-rendered form.
type formValues struct {
	Title  string
	Rating string
	Review string
}

// pageData is the single view model every page template receives.
type pageData struct {
	Flashes []string
	Movies  []*domain.Movie
	Movie   *domain.Movie
	Results []tmdb.SearchResult
	Form    formValues
	Errors  map[string]string
	Status  int
	Message string

	// CSRFField is the hidden token input every posted form must carry.
	CSRFField template.HTML
}

var templateFuncs = template.FuncMap{
	"rating": func(r *float64) string {
		if r == nil {
			return ""
		}
		return strconv.FormatFloat(*r, 'f', -1, 64)
	},
	"rank": func(r *int) string {
		if r == nil {
			return ""
		}
		return strconv.Itoa(*r)
	},
	"text": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"statusText": http.StatusText,
}

// parseTemplates builds one template set per page, each layered on base.html.
func parseTemplates() (map[string]*template.Template, error) {
	pages := []string{pageIndex, pageAdd, pageSelect, pageEdit, pageError}
	set := make(map[string]*template.Template, len(pages))

	for _, page := range pages {
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		set[page] = t
	}

	return set, nil
}

// render executes page into a buffer first so a template error never leaves
// a half-written response behind.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	t, ok := h.templates[page]
	if !ok {
		h.log(r).Error("unknown template", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data.CSRFField = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		h.log(r).Error("render template", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
