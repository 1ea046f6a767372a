// Package views renders the server side HTML partials.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"

	"github.com/adoptoposs/adoptoposs/internal/algorithms"
	"github.com/adoptoposs/adoptoposs/models"
)

//go:embed templates/*.html
var templates embed.FS

// Events emitted by the tag filter buttons.
const (
	EventAddFilter    = "add_filter"
	EventRemoveFilter = "remove_filter"
)

// DefaultTagColor is used for tags without a color of their own.
const DefaultTagColor = "#cccccc"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

var tmpl = template.Must(template.New("views").Funcs(template.FuncMap{
	"color": func(c string) template.CSS {
		if !hexColor.MatchString(c) {
			return template.CSS(DefaultTagColor)
		}
		return template.CSS(c)
	},
}).ParseFS(templates, "templates/*.html"))

// A TagFilter is one instance of the tag filter component.
type TagFilter struct {
	// Target identifies the component instance events are delivered to.
	Target   string
	Tags     []models.Tag
	Selected Selection
}

// RenderTagFilter writes the tag filter partial for f to w.
func RenderTagFilter(w io.Writer, f TagFilter) error {
	return tmpl.ExecuteTemplate(w, "tag_filter", f)
}

// Selection is an ordered set of tag ids.
type Selection []uint32

// Contains reports whether id is selected.
func (s Selection) Contains(id uint32) bool {
	return algorithms.Contains(s, id)
}

// Apply returns the selection after handling event for tagID. s is not
// modified.
func (s Selection) Apply(event string, tagID uint32) (Selection, error) {
	switch event {
	case EventAddFilter:
		if s.Contains(tagID) {
			return s, nil
		}
		return append(append(Selection{}, s...), tagID), nil
	case EventRemoveFilter:
		return algorithms.Filter(s, func(id uint32) bool { return id != tagID }), nil
	default:
		return s, fmt.Errorf("unknown event %q", event)
	}
}
