package providers

import (
	"github.com/samber/do/v2"

	"github.com/movieranker/movieranker/internal/logger"
	"github.com/movieranker/movieranker/internal/service"
	"github.com/movieranker/movieranker/internal/validation"
)

// ProvideValidator provides the shared form validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideMovieService provides the movie service.
func ProvideMovieService(i do.Injector) (*service.MovieService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tmdbHandle := do.MustInvoke[*TMDBClientHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMovieService(storeHandle.Store, tmdbHandle.Client, validator, log.Logger), nil
}
