// Package models contains the gorm models and stores for users, tags,
// tag subscriptions, projects and digests.
package models

// limitOrDefault clamps a caller supplied limit to something sensible.
func limitOrDefault(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	default:
		return limit
	}
}
