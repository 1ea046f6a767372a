package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockUser creates a new user in the database.
func MockUser(t *testing.T, tx *gorm.DB, username string) *User {
	t.Helper()
	require := require.New(t)

	user := &User{
		Name:          username,
		Username:      username,
		Email:         username + "@example.com",
		Provider:      "github",
		ProviderToken: "token-" + username,
		LastDigestAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(tx.Create(user).Error)
	return user
}

// WithColor sets the color of a tag.
func WithColor(color string) func(*Tag) {
	return func(t *Tag) {
		t.Color = color
	}
}

// MockTag creates a new tag in the database.
func MockTag(t *testing.T, tx *gorm.DB, name string, typ TagType, opts ...func(*Tag)) *Tag {
	t.Helper()
	require := require.New(t)

	tag := &Tag{
		Name: name,
		Type: typ,
	}
	for _, opt := range opts {
		opt(tag)
	}
	require.NoError(tx.Create(tag).Error)
	return tag
}

// WithStatus sets the status of a project.
func WithStatus(status ProjectStatus) func(*Project) {
	return func(p *Project) {
		p.Status = status
	}
}

// MockProject creates a new project in the database advertising a
// repository named repo written in language.
func MockProject(t *testing.T, tx *gorm.DB, user *User, language *Tag, repo string, opts ...func(*Project)) *Project {
	t.Helper()
	require := require.New(t)

	r := mockRepository(user, repo, language.Name)
	project := &Project{
		Title:       repo,
		Description: "looking for maintainers for " + repo,
		RepoID:      r.ID,
		RepoOwner:   r.Owner.Login,
		Repository:  r,
		Status:      ProjectPublished,
		UserID:      user.ID,
		LanguageID:  language.ID,
	}
	for _, opt := range opts {
		opt(project)
	}
	require.NoError(tx.Create(project).Error)
	return project
}

func mockRepository(user *User, name, language string) Repository {
	return Repository{
		ID:       fmt.Sprintf("%s/%s", user.Username, name),
		Name:     name,
		FullName: user.Username + "/" + name,
		URL:      "https://github.com/" + user.Username + "/" + name,
		Language: language,
		Owner: RepositoryOwner{
			Login: user.Username,
		},
		Stars: 42,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	require := require.New(t)
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger: logger.Default.LogMode(func() logger.LogLevel {
			return logger.Warn
		}()),
	})
	require.NoError(err)

	err = db.AutoMigrate(AllTables()...)
	require.NoError(err)

	// enable foreign key constraints
	err = db.Exec("PRAGMA foreign_keys = ON").Error
	require.NoError(err)

	return db
}
