package api

import (
	"net/http"

	"github.com/adoptoposs/adoptoposs/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the API and partial handlers on r. envFn builds the Env
// for each request.
func Routes(r chi.Router, envFn func(*http.Request) *Env) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", httpx.HandlerFunc(envFn, TagsIndex))
			r.Post("/", httpx.HandlerFunc(envFn, TagsCreate))
			r.Get("/projects", httpx.HandlerFunc(envFn, TagsProjects))
			r.Get("/lookup", httpx.HandlerFunc(envFn, TagsLookup))
			r.Get("/{id}", httpx.HandlerFunc(envFn, TagsShow))
			r.Put("/{id}", httpx.HandlerFunc(envFn, TagsUpdate))
			r.Delete("/{id}", httpx.HandlerFunc(envFn, TagsDestroy))
		})
		r.Route("/users/{user}", func(r chi.Router) {
			r.Get("/subscriptions", httpx.HandlerFunc(envFn, SubscriptionsIndex))
			r.Post("/subscriptions", httpx.HandlerFunc(envFn, SubscriptionsCreate))
			r.Delete("/subscriptions/{id}", httpx.HandlerFunc(envFn, SubscriptionsDestroy))
			r.Get("/recommended_tags", httpx.HandlerFunc(envFn, RecommendedTagsIndex))
			r.Get("/repositories", httpx.HandlerFunc(envFn, RepositoriesIndex))
			r.Get("/projects", httpx.HandlerFunc(envFn, UserProjectsIndex))
			r.Post("/projects", httpx.HandlerFunc(envFn, ProjectsCreate))
			r.Get("/digests", httpx.HandlerFunc(envFn, DigestsIndex))
		})
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", httpx.HandlerFunc(envFn, ProjectsIndex))
			r.Get("/search", httpx.HandlerFunc(envFn, ProjectsSearch))
			r.Get("/{id}", httpx.HandlerFunc(envFn, ProjectsShow))
			r.Put("/{id}", httpx.HandlerFunc(envFn, ProjectsUpdate))
			r.Delete("/{id}", httpx.HandlerFunc(envFn, ProjectsDestroy))
		})
	})
	r.Route("/tags/filters", func(r chi.Router) {
		r.Get("/", httpx.HandlerFunc(envFn, FiltersShow))
		r.Post("/", httpx.HandlerFunc(envFn, FiltersUpdate))
	})
}
