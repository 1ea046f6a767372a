package models

import (
	"errors"
	"strings"
	"time"

	"github.com/adoptoposs/adoptoposs/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// A Project advertises a user's repository as looking for maintainers.
// A Project belongs to a User and is labelled with the Tag of its
// repository's primary language.
// A user may submit each repository at most once.
type Project struct {
	ID          uint32 `gorm:"primarykey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string        `gorm:"size:255;not null"`
	Description string        `gorm:"type:text;not null"`
	RepoID      string        `gorm:"size:64;uniqueIndex:uidx_projects_user_id_repo_id;not null"`
	RepoOwner   string        `gorm:"size:64;not null"`
	Repository  Repository    `gorm:"serializer:json;not null"`
	Status      ProjectStatus `gorm:"not null;default:'published';index"`
	UserID      uint32        `gorm:"uniqueIndex:uidx_projects_user_id_repo_id;not null"`
	User        *User         `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	LanguageID  uint32        `gorm:"not null;index"`
	Language    *Tag          `gorm:"constraint:OnDelete:RESTRICT;<-:false;"`
}

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectPublished ProjectStatus = "published"
)

func (ProjectStatus) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql", "postgres":
		return "enum('draft', 'published')"
	case "sqlite":
		return "TEXT"
	default:
		return ""
	}
}

// ProjectAttrs are the user editable attributes of a project. On update they
// replace the stored values wholesale.
type ProjectAttrs struct {
	Title       string        `json:"title" schema:"title" validate:"required,max=255"`
	Description string        `json:"description" schema:"description" validate:"required"`
	Status      ProjectStatus `json:"status" schema:"status" validate:"omitempty,oneof=draft published"`
}

type Projects struct {
	db *gorm.DB
}

func NewProjects(db *gorm.DB) *Projects {
	return &Projects{db: db}
}

// Create creates a project for user advertising repo.
func (p *Projects) Create(user *User, repo Repository, attrs ProjectAttrs) (*Project, error) {
	if strings.TrimSpace(repo.ID) == "" {
		return nil, validation.Errorf("repository", "can't be blank")
	}
	project := &Project{
		UserID:     user.ID,
		RepoID:     repo.ID,
		RepoOwner:  repo.Owner.Login,
		Repository: repo,
	}
	if err := apply(project, attrs); err != nil {
		return nil, err
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&Project{}).Where("user_id = ? AND repo_id = ?", user.ID, repo.ID).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errProjectTaken()
		}
		language, err := NewTags(tx).FindLanguage(repo.Language)
		if err != nil {
			return err
		}
		project.LanguageID = language.ID
		if err := tx.Create(project).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errProjectTaken()
			}
			return err
		}
		project.User = user
		project.Language = language
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func errProjectTaken() error {
	return validation.Errorf("project", "has already been added")
}

// Update applies attrs to project. An empty status keeps the current one.
// If attrs are invalid project and its stored row are left unchanged.
func (p *Projects) Update(project *Project, attrs ProjectAttrs) (*Project, error) {
	updated := *project
	if err := apply(&updated, attrs); err != nil {
		return nil, err
	}
	err := p.db.Model(&updated).Select("title", "description", "status", "updated_at").Updates(&updated).Error
	if err != nil {
		return nil, err
	}
	*project = updated
	return project, nil
}

func apply(project *Project, attrs ProjectAttrs) error {
	attrs.Title = strings.TrimSpace(attrs.Title)
	attrs.Description = strings.TrimSpace(attrs.Description)
	if err := validation.New().Struct(attrs); err != nil {
		return err
	}
	project.Title = attrs.Title
	project.Description = attrs.Description
	if attrs.Status != "" {
		project.Status = attrs.Status
	}
	if project.Status == "" {
		project.Status = ProjectPublished
	}
	return nil
}

// Delete deletes project.
func (p *Projects) Delete(project *Project) error {
	return p.db.Delete(project).Error
}

// FindByID returns the project with the given id, with its user and language.
func (p *Projects) FindByID(id uint32) (*Project, error) {
	var project Project
	if err := p.db.Scopes(PreloadProject).Take(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Latest returns the most recently created projects, newest first.
func (p *Projects) Latest(limit int) ([]Project, error) {
	var projects []Project
	err := p.db.Scopes(PreloadProject, newestFirst).
		Limit(limitOrDefault(limit)).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByUser returns the projects owned by user, newest first.
func (p *Projects) ListByUser(user *User) ([]Project, error) {
	projects := []Project{}
	err := p.db.Scopes(PreloadProject, newestFirst).
		Where("projects.user_id = ?", user.ID).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Search returns published projects, newest first. If tagIDs is not empty
// only projects in one of those languages are returned.
func (p *Projects) Search(tagIDs []uint32, limit int) ([]Project, error) {
	projects := []Project{}
	query := p.db.Scopes(PreloadProject, newestFirst).
		Where("projects.status = ?", ProjectPublished)
	if len(tagIDs) > 0 {
		query = query.Where("projects.language_id IN ?", tagIDs)
	}
	if err := query.Limit(limitOrDefault(limit)).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// PreloadProject preloads a Project's user and language.
func PreloadProject(query *gorm.DB) *gorm.DB {
	return query.Preload("User").Preload("Language")
}

func newestFirst(query *gorm.DB) *gorm.DB {
	return query.Order("projects.created_at DESC").Order("projects.id DESC")
}
