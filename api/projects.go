package api

import (
	"net/http"

	"github.com/adoptoposs/adoptoposs/internal/algorithms"
	"github.com/adoptoposs/adoptoposs/internal/httpx"
	"github.com/adoptoposs/adoptoposs/internal/to"
	"github.com/adoptoposs/adoptoposs/internal/validation"
	"github.com/adoptoposs/adoptoposs/models"
)

// repositoryListLimit bounds the repositories a user can pick from when
// submitting a project.
const repositoryListLimit = 100

func ProjectsIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params struct {
		Limit int `schema:"limit"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	projects, err := models.NewProjects(env.DB).Latest(params.Limit)
	if err != nil {
		return err
	}
	return to.JSON(w, algorithms.Map(projects, serialiseProject))
}

// ProjectsSearch returns published projects in any of the languages named by
// tag_ids, or all published projects if tag_ids is empty.
func ProjectsSearch(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params struct {
		TagIDs []uint32 `schema:"tag_ids"`
		Limit  int      `schema:"limit"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	projects, err := models.NewProjects(env.DB).Search(params.TagIDs, params.Limit)
	if err != nil {
		return err
	}
	return to.JSON(w, algorithms.Map(projects, serialiseProject))
}

func ProjectsShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	project, err := env.findProject(r)
	if err != nil {
		return err
	}
	return to.JSON(w, serialiseProject(*project))
}

func UserProjectsIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.findUser(r)
	if err != nil {
		return err
	}
	projects, err := models.NewProjects(env.DB).ListByUser(user)
	if err != nil {
		return err
	}
	return to.JSON(w, algorithms.Map(projects, serialiseProject))
}

// RepositoriesIndex lists the repositories the user may submit as projects.
func RepositoriesIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.findUser(r)
	if err != nil {
		return err
	}
	repos, err := env.listRepositories(r, user)
	if err != nil {
		return err
	}
	return to.JSON(w, repos)
}

// ProjectsCreate submits one of the user's repositories as a project.
func ProjectsCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.findUser(r)
	if err != nil {
		return err
	}
	var params struct {
		RepositoryID string               `json:"repository_id" schema:"repository_id"`
		Title        string               `json:"title" schema:"title"`
		Description  string               `json:"description" schema:"description"`
		Status       models.ProjectStatus `json:"status" schema:"status"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	if params.RepositoryID == "" {
		return validation.Errorf("repository_id", "can't be blank")
	}
	repos, err := env.listRepositories(r, user)
	if err != nil {
		return err
	}
	matches := algorithms.Filter(repos, func(repo models.Repository) bool {
		return repo.ID == params.RepositoryID
	})
	if len(matches) == 0 {
		return validation.Errorf("repository_id", "is not one of your repositories")
	}
	project, err := models.NewProjects(env.DB).Create(user, matches[0], models.ProjectAttrs{
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
	})
	if err != nil {
		return err
	}
	projectsCreatedTotal.Inc()
	env.Log().Info("project created", "id", project.ID, "user", user.Username, "repository", project.Repository.FullName)
	return to.JSONStatus(w, http.StatusCreated, serialiseProject(*project))
}

func ProjectsUpdate(env *Env, w http.ResponseWriter, r *http.Request) error {
	project, err := env.findProject(r)
	if err != nil {
		return err
	}
	var attrs models.ProjectAttrs
	if err := httpx.Params(r, &attrs); err != nil {
		return err
	}
	project, err = models.NewProjects(env.DB).Update(project, attrs)
	if err != nil {
		return err
	}
	return to.JSON(w, serialiseProject(*project))
}

func ProjectsDestroy(env *Env, w http.ResponseWriter, r *http.Request) error {
	project, err := env.findProject(r)
	if err != nil {
		return err
	}
	if err := models.NewProjects(env.DB).Delete(project); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (e *Env) listRepositories(r *http.Request, user *models.User) ([]models.Repository, error) {
	lister, err := e.Providers.Lister(user.Provider)
	if err != nil {
		return nil, err
	}
	return lister.ListRepositories(r.Context(), user.ProviderToken, repositoryListLimit)
}
