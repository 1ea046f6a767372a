package models

// A Repository is a snapshot of a repository at an external hosting
// provider. It is stored alongside the Project that advertises it.
type Repository struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	FullName    string          `json:"full_name"`
	Description string          `json:"description"`
	URL         string          `json:"url"`
	Language    string          `json:"language"`
	Owner       RepositoryOwner `json:"owner"`
	Stars       int             `json:"stars"`
	Watchers    int             `json:"watchers"`
	Forks       int             `json:"forks"`
	OpenIssues  int             `json:"open_issues"`
}

type RepositoryOwner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}
