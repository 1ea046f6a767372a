package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/adoptoposs/adoptoposs/internal/algorithms"
	"github.com/adoptoposs/adoptoposs/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// UnknownTagName is the name of the tag assigned to projects whose
// repository reports no primary language.
const UnknownTagName = "unknown"

// RecommendationRepositoryLimit is the number of repositories inspected when
// recommending tags to a user.
const RecommendationRepositoryLimit = 25

// A Tag labels projects. Language tags are matched against the primary
// language of a project's repository, topic tags are free form.
// Tag names are unique regardless of case.
type Tag struct {
	ID        uint32 `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string  `gorm:"size:64;uniqueIndex;not null"`
	Type      TagType `gorm:"not null;default:'language'"`
	Color     string  `gorm:"size:7;not null;default:''"`
}

type TagType string

const (
	TagTypeLanguage TagType = "language"
	TagTypeTopic    TagType = "topic"
)

func (TagType) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql", "postgres":
		return "enum('language', 'topic')"
	case "sqlite":
		return "TEXT"
	default:
		return ""
	}
}

// BeforeSave trims the tag name so lookups by name are stable.
func (t *Tag) BeforeSave(tx *gorm.DB) error {
	t.Name = strings.TrimSpace(t.Name)
	return nil
}

// TagAttrs are the attributes accepted when creating or updating a tag.
type TagAttrs struct {
	Name  string  `json:"name" schema:"name" validate:"required,max=64"`
	Type  TagType `json:"type" schema:"type" validate:"required,oneof=language topic"`
	Color string  `json:"color" schema:"color" validate:"omitempty,hexcolor"`
}

// TagCount is a Tag together with the number of published projects using it.
type TagCount struct {
	Tag           `gorm:"embedded"`
	ProjectsCount int
}

// RepositoryLister lists the repositories visible to the holder of token.
type RepositoryLister interface {
	ListRepositories(ctx context.Context, token string, limit int) ([]Repository, error)
}

// Providers resolves a provider identifier to its RepositoryLister.
type Providers interface {
	Lister(provider string) (RepositoryLister, error)
}

type Tags struct {
	db *gorm.DB
}

func NewTags(db *gorm.DB) *Tags {
	return &Tags{db: db}
}

// ListLanguages returns all language tags ordered by name.
func (t *Tags) ListLanguages() ([]Tag, error) {
	var tags []Tag
	if err := t.db.Where("type = ?", TagTypeLanguage).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListProjectTags returns the distinct tags used by published projects with
// the number of projects using each, most used first.
func (t *Tags) ListProjectTags() ([]TagCount, error) {
	var counts []TagCount
	err := t.db.Table("tags").
		Select("tags.*, COUNT(projects.id) AS projects_count").
		Joins("JOIN projects ON projects.language_id = tags.id").
		Where("projects.status = ?", ProjectPublished).
		Group("tags.id").
		Order("projects_count DESC, tags.name ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// FindByID returns the tag with the given id.
func (t *Tags) FindByID(id uint32) (*Tag, error) {
	var tag Tag
	if err := t.db.Take(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByName returns the tag whose name matches name regardless of case.
// An empty name finds the unknown tag.
func (t *Tags) FindByName(name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnknownTagName
	}
	var tag Tag
	if err := t.db.Where("LOWER(name) = ?", strings.ToLower(name)).Take(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindLanguage returns the language tag named name regardless of case, or
// the unknown tag when no language tag has that name.
func (t *Tags) FindLanguage(name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnknownTagName
	}
	var tag Tag
	err := t.db.Where("type = ?", TagTypeLanguage).Where("LOWER(name) = ?", strings.ToLower(name)).Take(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) && !strings.EqualFold(name, UnknownTagName) {
		return t.FindLanguage(UnknownTagName)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Create validates attrs and creates a new tag.
func (t *Tags) Create(attrs TagAttrs) (*Tag, error) {
	tag := &Tag{}
	if err := t.apply(tag, attrs); err != nil {
		return nil, err
	}
	if err := t.db.Create(tag).Error; err != nil {
		return nil, t.translate(err)
	}
	return tag, nil
}

// Update validates attrs and applies them to tag. On failure tag is left
// unchanged.
func (t *Tags) Update(tag *Tag, attrs TagAttrs) (*Tag, error) {
	updated := *tag
	if err := t.apply(&updated, attrs); err != nil {
		return nil, err
	}
	if err := t.db.Save(&updated).Error; err != nil {
		return nil, t.translate(err)
	}
	*tag = updated
	return tag, nil
}

// Delete deletes tag along with its subscriptions. A tag that labels any
// project is not deleted.
func (t *Tags) Delete(tag *Tag) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&Project{}).Where("language_id = ?", tag.ID).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return validation.Errorf("tag", "is in use by %d project(s)", used)
		}
		return tx.Delete(tag).Error
	})
}

func (t *Tags) apply(tag *Tag, attrs TagAttrs) error {
	attrs.Name = strings.TrimSpace(attrs.Name)
	if err := validation.New().Struct(attrs); err != nil {
		return err
	}
	var taken int64
	query := t.db.Model(&Tag{}).Where("LOWER(name) = ?", strings.ToLower(attrs.Name))
	if tag.ID != 0 {
		query = query.Where("id <> ?", tag.ID)
	}
	if err := query.Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return validation.Errorf("name", "has already been taken")
	}
	tag.Name = attrs.Name
	tag.Type = attrs.Type
	tag.Color = attrs.Color
	return nil
}

func (t *Tags) translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return validation.Errorf("name", "has already been taken")
	}
	return err
}

// UpsertAll inserts tags, updating the type and color of any tag whose name
// already exists. Names are matched regardless of case, so repeated imports
// converge on the stored spelling. The stored tags are returned ordered by
// name.
func (t *Tags) UpsertAll(tags []Tag) ([]Tag, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	v := validation.New()
	var upserted []Tag
	err := t.db.Transaction(func(tx *gorm.DB) error {
		lower := algorithms.Map(tags, func(tag Tag) string {
			return strings.ToLower(strings.TrimSpace(tag.Name))
		})
		var existing []Tag
		if err := tx.Where("LOWER(name) IN ?", lower).Find(&existing).Error; err != nil {
			return err
		}
		stored := make(map[string]string, len(existing))
		for _, e := range existing {
			stored[strings.ToLower(e.Name)] = e.Name
		}

		seen := make(map[string]bool, len(tags))
		rows := make([]Tag, 0, len(tags))
		for i, tag := range tags {
			attrs := TagAttrs{Name: strings.TrimSpace(tag.Name), Type: tag.Type, Color: tag.Color}
			if err := v.Struct(attrs); err != nil {
				return err
			}
			if seen[lower[i]] {
				continue
			}
			seen[lower[i]] = true
			if name, ok := stored[lower[i]]; ok {
				attrs.Name = name
			}
			rows = append(rows, Tag{Name: attrs.Name, Type: attrs.Type, Color: attrs.Color})
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "color", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return err
		}
		return tx.Where("LOWER(name) IN ?", lower).Order("name").Find(&upserted).Error
	})
	return upserted, err
}

// ListRecommended returns the language tags matching the primary languages
// of the user's most recent repositories at their provider. Errors from the
// provider are returned unchanged.
func (t *Tags) ListRecommended(ctx context.Context, user *User, token string, providers Providers) ([]Tag, error) {
	lister, err := providers.Lister(user.Provider)
	if err != nil {
		return nil, err
	}
	repos, err := lister.ListRepositories(ctx, token, RecommendationRepositoryLimit)
	if err != nil {
		return nil, err
	}

	languages := algorithms.Uniq(algorithms.Filter(
		algorithms.Map(repos, func(r Repository) string { return strings.ToLower(r.Language) }),
		func(lang string) bool { return lang != "" },
	))
	if len(languages) == 0 {
		return []Tag{}, nil
	}

	var tags []Tag
	err = t.db.WithContext(ctx).
		Where("type = ?", TagTypeLanguage).
		Where("LOWER(name) IN ?", languages).
		Order("name").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}
