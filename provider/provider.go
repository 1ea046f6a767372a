// Package provider talks to the repository hosting services users sign in
// with.
package provider

import (
	"fmt"
	"net/http"

	"github.com/adoptoposs/adoptoposs/models"
)

// Error is returned when a provider rejects a request. It carries the
// provider's message and the HTTP status it responded with.
type Error struct {
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// Status returns the HTTP status code the provider responded with.
func (e *Error) Status() int {
	return e.Code
}

// Registry maps provider identifiers to their clients.
type Registry map[string]models.RepositoryLister

// Lister returns the RepositoryLister registered for provider.
func (r Registry) Lister(provider string) (models.RepositoryLister, error) {
	lister, ok := r[provider]
	if !ok {
		return nil, &Error{
			Message: fmt.Sprintf("unsupported provider %q", provider),
			Code:    http.StatusBadRequest,
		}
	}
	return lister, nil
}
