package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/adoptoposs/adoptoposs/models"
	"github.com/adoptoposs/adoptoposs/provider"
	"github.com/go-chi/chi/v5"
	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubLister struct {
	repos []models.Repository
	err   error
	token string
}

func (s *stubLister) ListRepositories(ctx context.Context, token string, limit int) ([]models.Repository, error) {
	s.token = token
	return s.repos, s.err
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	require := require.New(t)
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	require.NoError(err)
	require.NoError(db.AutoMigrate(models.AllTables()...))

	// enable foreign key constraints
	require.NoError(db.Exec("PRAGMA foreign_keys = ON").Error)
	return db
}

func newRouter(tx *gorm.DB, lister *stubLister) http.Handler {
	r := chi.NewRouter()
	r.Use(Instrument)
	Routes(r, func(*http.Request) *Env {
		return &Env{
			DB:        tx,
			Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
			Providers: provider.Registry{"github": lister},
		}
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors"`
}

func mockUser(t *testing.T, tx *gorm.DB, username string) *models.User {
	t.Helper()
	user, err := models.NewUsers(tx).Create(models.UserAttrs{
		Username:      username,
		Provider:      "github",
		ProviderToken: "token-" + username,
	})
	require.NoError(t, err)
	return user
}

func mockTag(t *testing.T, tx *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag, err := models.NewTags(tx).Create(models.TagAttrs{Name: name, Type: models.TagTypeLanguage, Color: "#00ADD8"})
	require.NoError(t, err)
	return tag
}

func repository(id, language string) models.Repository {
	return models.Repository{
		ID:       id,
		Name:     "repo-" + id,
		FullName: "alice/repo-" + id,
		Language: language,
		Owner:    models.RepositoryOwner{Login: "alice"},
	}
}

func TestTags(t *testing.T) {
	db := setupTestDB(t)

	t.Run("create and show", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})

		rec := do(t, h, "POST", "/api/v1/tags", map[string]any{"name": "Go", "type": "language", "color": "#00ADD8"})
		require.Equal(http.StatusCreated, rec.Code, rec.Body.String())
		created := decode[map[string]any](t, rec)
		require.Equal("Go", created["name"])

		rec = do(t, h, "GET", "/api/v1/tags", nil)
		require.Equal(http.StatusOK, rec.Code)
		tags := decode[[]map[string]any](t, rec)
		require.Len(tags, 1)
		require.Equal(created["id"], tags[0]["id"])
	})

	t.Run("create with a name taken in another case", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		mockTag(t, tx, "Go")

		rec := do(t, h, "POST", "/api/v1/tags", map[string]any{"name": "GO", "type": "language"})
		require.Equal(http.StatusUnprocessableEntity, rec.Code)
		body := decode[errorBody](t, rec)
		require.Equal([]string{"has already been taken"}, body.Errors["name"])
	})

	t.Run("lookup normalises case", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		tag := mockTag(t, tx, "JavaScript")

		rec := do(t, h, "GET", "/api/v1/tags/lookup?name=javascript", nil)
		require.Equal(http.StatusOK, rec.Code)
		require.EqualValues(tag.ID, decode[map[string]any](t, rec)["id"])

		rec = do(t, h, "GET", "/api/v1/tags/lookup?name=cobol", nil)
		require.Equal(http.StatusNotFound, rec.Code)
	})

	t.Run("update and delete", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		tag := mockTag(t, tx, "Rust")
		path := "/api/v1/tags/" + itoa(tag.ID)

		rec := do(t, h, "PUT", path, map[string]any{"name": "Rust", "type": "language", "color": "#dea584"})
		require.Equal(http.StatusOK, rec.Code, rec.Body.String())
		require.Equal("#dea584", decode[map[string]any](t, rec)["color"])

		rec = do(t, h, "DELETE", path, nil)
		require.Equal(http.StatusNoContent, rec.Code)

		rec = do(t, h, "GET", path, nil)
		require.Equal(http.StatusNotFound, rec.Code)
	})

	t.Run("delete a tag in use", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{repos: []models.Repository{repository("7", "Go")}})
		alice := mockUser(t, tx, "alice")
		golang := mockTag(t, tx, "Go")

		rec := do(t, h, "POST", "/api/v1/users/"+itoa(alice.ID)+"/projects", map[string]any{"repository_id": "7", "title": "repo-7", "description": "needs a home"})
		require.Equal(http.StatusCreated, rec.Code, rec.Body.String())

		path := "/api/v1/tags/" + itoa(golang.ID)
		rec = do(t, h, "DELETE", path, nil)
		require.Equal(http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		require.Equal([]string{"is in use by 1 project(s)"}, decode[errorBody](t, rec).Errors["tag"])

		rec = do(t, h, "GET", path, nil)
		require.Equal(http.StatusOK, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})

		rec := do(t, h, "GET", "/api/v1/tags/abc", nil)
		require.Equal(http.StatusBadRequest, rec.Code)
	})
}

func TestSubscriptions(t *testing.T) {
	db := setupTestDB(t)

	t.Run("create and list", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		alice := mockUser(t, tx, "alice")
		golang := mockTag(t, tx, "Go")
		ruby := mockTag(t, tx, "Ruby")
		path := "/api/v1/users/" + itoa(alice.ID) + "/subscriptions"

		rec := do(t, h, "POST", path, map[string]any{"tag_ids": []uint32{ruby.ID, golang.ID}})
		require.Equal(http.StatusCreated, rec.Code, rec.Body.String())
		require.Len(decode[[]map[string]any](t, rec), 2)

		rec = do(t, h, "GET", path, nil)
		require.Equal(http.StatusOK, rec.Code)
		require.Len(decode[[]map[string]any](t, rec), 2)

		rec = do(t, h, "POST", path, map[string]any{"tag_ids": []uint32{golang.ID}})
		require.Equal(http.StatusUnprocessableEntity, rec.Code)
		require.Equal([]string{"is already subscribed"}, decode[errorBody](t, rec).Errors["tag"])
	})

	t.Run("unknown tag", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		alice := mockUser(t, tx, "alice")
		golang := mockTag(t, tx, "Go")

		rec := do(t, h, "POST", "/api/v1/users/"+itoa(alice.ID)+"/subscriptions", map[string]any{"tag_ids": []uint32{golang.ID, golang.ID + 100}})
		require.Equal(http.StatusUnprocessableEntity, rec.Code)
		require.Contains(decode[errorBody](t, rec).Errors, "tag_ids")

		subscriptions, err := models.NewTagSubscriptions(tx).ListByUser(alice)
		require.NoError(err)
		require.Empty(subscriptions)
	})

	t.Run("delete only your own", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		alice := mockUser(t, tx, "alice")
		bob := mockUser(t, tx, "bob")
		sub, err := models.NewTagSubscriptions(tx).Create(alice, mockTag(t, tx, "Go"))
		require.NoError(err)

		rec := do(t, h, "DELETE", "/api/v1/users/"+itoa(bob.ID)+"/subscriptions/"+itoa(sub.ID), nil)
		require.Equal(http.StatusNotFound, rec.Code)

		rec = do(t, h, "DELETE", "/api/v1/users/"+itoa(alice.ID)+"/subscriptions/"+itoa(sub.ID), nil)
		require.Equal(http.StatusNoContent, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})

		rec := do(t, h, "GET", "/api/v1/users/999/subscriptions", nil)
		require.Equal(http.StatusNotFound, rec.Code)
	})
}

func TestRecommendedTags(t *testing.T) {
	db := setupTestDB(t)

	t.Run("languages of the user's repositories", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		lister := &stubLister{repos: []models.Repository{
			repository("1", "Go"),
			repository("2", "go"),
			repository("3", ""),
			repository("4", "Haskell"),
		}}
		h := newRouter(tx, lister)
		alice := mockUser(t, tx, "alice")
		mockTag(t, tx, "Go")
		mockTag(t, tx, "Ruby")

		rec := do(t, h, "GET", "/api/v1/users/"+itoa(alice.ID)+"/recommended_tags", nil)
		require.Equal(http.StatusOK, rec.Code, rec.Body.String())
		tags := decode[[]map[string]any](t, rec)
		require.Len(tags, 1)
		require.Equal("Go", tags[0]["name"])
		require.Equal("token-alice", lister.token)
	})

	t.Run("provider errors keep their status", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{err: &provider.Error{Message: "Bad credentials", Code: http.StatusUnauthorized}})
		alice := mockUser(t, tx, "alice")

		rec := do(t, h, "GET", "/api/v1/users/"+itoa(alice.ID)+"/recommended_tags", nil)
		require.Equal(http.StatusUnauthorized, rec.Code)
		require.Contains(decode[errorBody](t, rec).Error, "Bad credentials")
	})
}

func TestProjects(t *testing.T) {
	db := setupTestDB(t)

	t.Run("create", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{repos: []models.Repository{repository("7", "Go")}})
		alice := mockUser(t, tx, "alice")
		golang := mockTag(t, tx, "Go")
		path := "/api/v1/users/" + itoa(alice.ID) + "/projects"

		rec := do(t, h, "POST", path, map[string]any{"repository_id": "7", "title": "repo-7", "description": "needs a home"})
		require.Equal(http.StatusCreated, rec.Code, rec.Body.String())
		project := decode[map[string]any](t, rec)
		require.Equal("published", project["status"])
		require.EqualValues(golang.ID, project["language_id"])

		rec = do(t, h, "POST", path, map[string]any{"repository_id": "7", "title": "again", "description": "needs a home"})
		require.Equal(http.StatusUnprocessableEntity, rec.Code)
		require.Equal([]string{"has already been added"}, decode[errorBody](t, rec).Errors["project"])

		rec = do(t, h, "POST", path, map[string]any{"repository_id": "8", "title": "nope", "description": "not mine"})
		require.Equal(http.StatusUnprocessableEntity, rec.Code)
		require.Contains(decode[errorBody](t, rec).Errors, "repository_id")

		rec = do(t, h, "GET", path, nil)
		require.Equal(http.StatusOK, rec.Code)
		require.Len(decode[[]map[string]any](t, rec), 1)
	})

	t.Run("user with no projects", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		alice := mockUser(t, tx, "alice")

		rec := do(t, h, "GET", "/api/v1/users/"+itoa(alice.ID)+"/projects", nil)
		require.Equal(http.StatusOK, rec.Code)
		require.Equal("[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("update with an empty description", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		alice := mockUser(t, tx, "alice")
		mockTag(t, tx, models.UnknownTagName)
		project, err := models.NewProjects(tx).Create(alice, repository("9", "Go"), models.ProjectAttrs{Title: "repo-9", Description: "original"})
		require.NoError(err)
		path := "/api/v1/projects/" + itoa(project.ID)

		rec := do(t, h, "PUT", path, map[string]any{"title": "repo-9", "description": ""})
		require.Equal(http.StatusUnprocessableEntity, rec.Code)
		require.Equal([]string{"can't be blank"}, decode[errorBody](t, rec).Errors["description"])

		rec = do(t, h, "GET", path, nil)
		require.Equal(http.StatusOK, rec.Code)
		require.Equal("original", decode[map[string]any](t, rec)["description"])

		rec = do(t, h, "PUT", path, map[string]any{"title": "repo-9", "description": "updated", "status": "draft"})
		require.Equal(http.StatusOK, rec.Code, rec.Body.String())
		require.Equal("draft", decode[map[string]any](t, rec)["status"])
	})

	t.Run("latest, search and delete", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		alice := mockUser(t, tx, "alice")
		golang := mockTag(t, tx, "Go")
		ruby := mockTag(t, tx, "Ruby")
		projects := models.NewProjects(tx)
		p1, err := projects.Create(alice, repository("1", "Go"), models.ProjectAttrs{Title: "one", Description: "go"})
		require.NoError(err)
		_, err = projects.Create(alice, repository("2", "Ruby"), models.ProjectAttrs{Title: "two", Description: "ruby"})
		require.NoError(err)

		rec := do(t, h, "GET", "/api/v1/projects?limit=1", nil)
		require.Equal(http.StatusOK, rec.Code)
		require.Len(decode[[]map[string]any](t, rec), 1)

		rec = do(t, h, "GET", "/api/v1/projects/search?tag_ids="+itoa(golang.ID), nil)
		require.Equal(http.StatusOK, rec.Code)
		found := decode[[]map[string]any](t, rec)
		require.Len(found, 1)
		require.Equal("one", found[0]["title"])

		rec = do(t, h, "GET", "/api/v1/projects/search?tag_ids="+itoa(golang.ID)+"&tag_ids="+itoa(ruby.ID), nil)
		require.Len(decode[[]map[string]any](t, rec), 2)

		path := "/api/v1/projects/" + itoa(p1.ID)
		rec = do(t, h, "DELETE", path, nil)
		require.Equal(http.StatusNoContent, rec.Code)
		rec = do(t, h, "GET", path, nil)
		require.Equal(http.StatusNotFound, rec.Code)
	})
}

func TestDigests(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()
	h := newRouter(tx, &stubLister{})
	alice := mockUser(t, tx, "alice")
	bob := mockUser(t, tx, "bob")
	golang := mockTag(t, tx, "Go")
	_, err := models.NewTagSubscriptions(tx).Create(alice, golang)
	require.NoError(err)
	alice.LastDigestAt = time.Now().Add(-time.Minute)
	_, err = models.NewProjects(tx).Create(bob, repository("5", "Go"), models.ProjectAttrs{Title: "bob's", Description: "go"})
	require.NoError(err)

	n, err := models.NewDigests(tx).Collect(alice)
	require.NoError(err)
	require.Equal(1, n)

	rec := do(t, h, "GET", "/api/v1/users/"+itoa(alice.ID)+"/digests", nil)
	require.Equal(http.StatusOK, rec.Code)
	digests := decode[[]map[string]any](t, rec)
	require.Len(digests, 1)
	require.Equal("bob's", digests[0]["project"].(map[string]any)["title"])
}

func TestFilters(t *testing.T) {
	db := setupTestDB(t)

	t.Run("render and apply events", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})
		alice := mockUser(t, tx, "alice")
		golang := mockTag(t, tx, "Go")
		_, err := models.NewProjects(tx).Create(alice, repository("1", "Go"), models.ProjectAttrs{Title: "one", Description: "go"})
		require.NoError(err)

		rec := do(t, h, "GET", "/tags/filters?target=search", nil)
		require.Equal(http.StatusOK, rec.Code)
		require.Equal("text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		require.Contains(rec.Body.String(), `data-event="add_filter" data-tag-id="`+itoa(golang.ID)+`" data-target="search"`)

		rec = do(t, h, "POST", "/tags/filters", map[string]any{"target": "search", "event": "add_filter", "tag_id": golang.ID})
		require.Equal(http.StatusOK, rec.Code, rec.Body.String())
		require.Contains(rec.Body.String(), `class="tag selected"`)
		require.Contains(rec.Body.String(), `data-event="remove_filter"`)

		rec = do(t, h, "POST", "/tags/filters", map[string]any{"target": "search", "event": "remove_filter", "tag_id": golang.ID, "selected": []uint32{golang.ID}})
		require.Equal(http.StatusOK, rec.Code)
		require.NotContains(rec.Body.String(), `selected`)
	})

	t.Run("unknown event", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()
		h := newRouter(tx, &stubLister{})

		rec := do(t, h, "POST", "/tags/filters", map[string]any{"event": "toggle", "tag_id": 1})
		require.Equal(http.StatusBadRequest, rec.Code)
	})
}

func itoa(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
