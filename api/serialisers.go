package api

import (
	"time"

	"github.com/adoptoposs/adoptoposs/models"
)

// serialisers for the API responses.

func serialiseTag(t models.Tag) map[string]any {
	return map[string]any{
		"id":         t.ID,
		"name":       t.Name,
		"type":       t.Type,
		"color":      t.Color,
		"created_at": timestamp(t.CreatedAt),
		"updated_at": timestamp(t.UpdatedAt),
	}
}

func serialiseTagCount(tc models.TagCount) map[string]any {
	m := serialiseTag(tc.Tag)
	m["projects_count"] = tc.ProjectsCount
	return m
}

func serialiseSubscription(s models.TagSubscription) map[string]any {
	m := map[string]any{
		"id":         s.ID,
		"user_id":    s.UserID,
		"tag_id":     s.TagID,
		"created_at": timestamp(s.CreatedAt),
	}
	if s.Tag != nil {
		m["tag"] = serialiseTag(*s.Tag)
	}
	return m
}

// serialiseUser returns the public part of a user. The provider token is
// never serialised.
func serialiseUser(u *models.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"username":   u.Username,
		"avatar_url": u.AvatarURL,
		"provider":   u.Provider,
	}
}

func serialiseProject(p models.Project) map[string]any {
	m := map[string]any{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"status":      p.Status,
		"repo_id":     p.RepoID,
		"repo_owner":  p.RepoOwner,
		"repository":  p.Repository,
		"user_id":     p.UserID,
		"language_id": p.LanguageID,
		"created_at":  timestamp(p.CreatedAt),
		"updated_at":  timestamp(p.UpdatedAt),
	}
	if p.User != nil {
		m["user"] = serialiseUser(p.User)
	}
	if p.Language != nil {
		m["language"] = serialiseTag(*p.Language)
	}
	return m
}

func serialiseDigest(d models.Digest) map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"project_id": d.ProjectID,
		"tag_id":     d.TagID,
		"created_at": timestamp(d.CreatedAt),
	}
	if d.Project != nil {
		m["project"] = serialiseProject(*d.Project)
	}
	if d.Tag != nil {
		m["tag"] = serialiseTag(*d.Tag)
	}
	return m
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
