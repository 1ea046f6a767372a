package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/adoptoposs/adoptoposs/models"
	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// GitHub lists repositories through the GitHub REST API.
type GitHub struct {
	// BaseURL is the API endpoint. If empty, api.github.com is used.
	BaseURL string

	// Limiter, if set, throttles requests to the API.
	Limiter *rate.Limiter
}

// ListRepositories returns up to limit of the repositories owned by the
// holder of token, most recently updated first.
func (g *GitHub) ListRepositories(ctx context.Context, token string, limit int) ([]models.Repository, error) {
	if g.Limiter != nil {
		if err := g.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	client, err := g.client(ctx, token)
	if err != nil {
		return nil, err
	}
	repos, _, err := client.Repositories.List(ctx, "", &github.RepositoryListOptions{
		Affiliation: "owner,organization_member",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, translate(err)
	}
	result := make([]models.Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, toRepository(r))
	}
	return result, nil
}

func (g *GitHub) client(ctx context.Context, token string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	if g.BaseURL != "" {
		base := g.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, err
		}
		client.BaseURL = u
	}
	return client, nil
}

func toRepository(r *github.Repository) models.Repository {
	return models.Repository{
		ID:          strconv.FormatInt(int64(r.GetID()), 10),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		URL:         r.GetHTMLURL(),
		Language:    r.GetLanguage(),
		Owner: models.RepositoryOwner{
			Login:     r.GetOwner().GetLogin(),
			AvatarURL: r.GetOwner().GetAvatarURL(),
		},
		Stars:      r.GetStargazersCount(),
		Watchers:   r.GetWatchersCount(),
		Forks:      r.GetForksCount(),
		OpenIssues: r.GetOpenIssuesCount(),
	}
}

// translate converts GitHub API errors into *Error.
func translate(err error) error {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return &Error{Message: rle.Message, Code: statusCode(rle.Response, http.StatusForbidden)}
	}
	var arle *github.AbuseRateLimitError
	if errors.As(err, &arle) {
		return &Error{Message: arle.Message, Code: statusCode(arle.Response, http.StatusForbidden)}
	}
	var ere *github.ErrorResponse
	if errors.As(err, &ere) {
		return &Error{Message: ere.Message, Code: statusCode(ere.Response, http.StatusBadGateway)}
	}
	return err
}

func statusCode(resp *http.Response, def int) int {
	if resp == nil {
		return def
	}
	return resp.StatusCode
}
