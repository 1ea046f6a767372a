// Package api implements the Adoptoposs JSON API and the HTML partials
// served alongside it.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/adoptoposs/adoptoposs/internal/httpx"
	"github.com/adoptoposs/adoptoposs/models"
	"github.com/adoptoposs/adoptoposs/provider"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
)

type Env struct {
	// DB is the database connection, scoped to the request's context.
	DB        *gorm.DB
	Logger    *slog.Logger
	Providers provider.Registry
}

func (e *Env) Log() *slog.Logger {
	return e.Logger
}

func (e *Env) findUser(r *http.Request) (*models.User, error) {
	id, err := uintParam(r, "user")
	if err != nil {
		return nil, err
	}
	user, err := models.NewUsers(e.DB).FindByID(id)
	return user, notFound(err)
}

func (e *Env) findTag(r *http.Request) (*models.Tag, error) {
	id, err := uintParam(r, "id")
	if err != nil {
		return nil, err
	}
	tag, err := models.NewTags(e.DB).FindByID(id)
	return tag, notFound(err)
}

func (e *Env) findProject(r *http.Request) (*models.Project, error) {
	id, err := uintParam(r, "id")
	if err != nil {
		return nil, err
	}
	project, err := models.NewProjects(e.DB).FindByID(id)
	return project, notFound(err)
}

// uintParam returns the named URL parameter as an id.
func uintParam(r *http.Request, name string) (uint32, error) {
	v := chi.URLParam(r, name)
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil || id == 0 {
		return 0, httpx.Error(http.StatusBadRequest, fmt.Errorf("invalid %s %q", name, v))
	}
	return uint32(id), nil
}

// notFound marks gorm.ErrRecordNotFound as a 404.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httpx.Error(http.StatusNotFound, err)
	}
	return err
}
