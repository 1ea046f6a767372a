package api

import (
	"net/http"

	"github.com/adoptoposs/adoptoposs/internal/algorithms"
	"github.com/adoptoposs/adoptoposs/internal/httpx"
	"github.com/adoptoposs/adoptoposs/models"
	"github.com/adoptoposs/adoptoposs/views"
)

type filterParams struct {
	Target   string   `json:"target" schema:"target"`
	Selected []uint32 `json:"selected" schema:"selected"`
	Event    string   `json:"event" schema:"event"`
	TagID    uint32   `json:"tag_id" schema:"tag_id"`
}

// FiltersShow renders the tag filter partial for the tags of published
// projects.
func FiltersShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params filterParams
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	return renderFilter(env, w, params.Target, params.Selected)
}

// FiltersUpdate applies a filter event to the selection and re-renders the
// partial.
func FiltersUpdate(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params filterParams
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	selected, err := views.Selection(params.Selected).Apply(params.Event, params.TagID)
	if err != nil {
		return httpx.Error(http.StatusBadRequest, err)
	}
	return renderFilter(env, w, params.Target, selected)
}

func renderFilter(env *Env, w http.ResponseWriter, target string, selected views.Selection) error {
	counts, err := models.NewTags(env.DB).ListProjectTags()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return views.RenderTagFilter(w, views.TagFilter{
		Target:   target,
		Tags:     algorithms.Map(counts, func(tc models.TagCount) models.Tag { return tc.Tag }),
		Selected: algorithms.Uniq(selected),
	})
}
