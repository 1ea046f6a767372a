package api

import (
	"net/http"

	"github.com/adoptoposs/adoptoposs/internal/algorithms"
	"github.com/adoptoposs/adoptoposs/internal/httpx"
	"github.com/adoptoposs/adoptoposs/internal/to"
	"github.com/adoptoposs/adoptoposs/models"
)

func TagsIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	tags, err := models.NewTags(env.DB).ListLanguages()
	if err != nil {
		return err
	}
	return to.JSON(w, algorithms.Map(tags, serialiseTag))
}

// TagsProjects lists the tags in use by published projects, most used first.
func TagsProjects(env *Env, w http.ResponseWriter, r *http.Request) error {
	counts, err := models.NewTags(env.DB).ListProjectTags()
	if err != nil {
		return err
	}
	return to.JSON(w, algorithms.Map(counts, serialiseTagCount))
}

func TagsLookup(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params struct {
		Name string `schema:"name"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	tag, err := models.NewTags(env.DB).FindByName(params.Name)
	if err != nil {
		return notFound(err)
	}
	return to.JSON(w, serialiseTag(*tag))
}

func TagsShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	tag, err := env.findTag(r)
	if err != nil {
		return err
	}
	return to.JSON(w, serialiseTag(*tag))
}

func TagsCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	var attrs models.TagAttrs
	if err := httpx.Params(r, &attrs); err != nil {
		return err
	}
	tag, err := models.NewTags(env.DB).Create(attrs)
	if err != nil {
		return err
	}
	return to.JSONStatus(w, http.StatusCreated, serialiseTag(*tag))
}

func TagsUpdate(env *Env, w http.ResponseWriter, r *http.Request) error {
	tag, err := env.findTag(r)
	if err != nil {
		return err
	}
	var attrs models.TagAttrs
	if err := httpx.Params(r, &attrs); err != nil {
		return err
	}
	tag, err = models.NewTags(env.DB).Update(tag, attrs)
	if err != nil {
		return err
	}
	return to.JSON(w, serialiseTag(*tag))
}

func TagsDestroy(env *Env, w http.ResponseWriter, r *http.Request) error {
	tag, err := env.findTag(r)
	if err != nil {
		return err
	}
	if err := models.NewTags(env.DB).Delete(tag); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
