// Package linguist reads the programming language catalogue published by
// github/linguist.
package linguist

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"

	"github.com/carlmjohnson/requests"
	"gopkg.in/yaml.v3"
)

// LanguagesURL is the canonical location of linguist's languages.yml.
const LanguagesURL = "https://raw.githubusercontent.com/github-linguist/linguist/master/lib/linguist/languages.yml"

// A Language is a programming language known to linguist.
type Language struct {
	Name  string
	Color string
}

type entry struct {
	Type  string `yaml:"type"`
	Color string `yaml:"color"`
}

// Fetch downloads and parses the languages.yml at url.
func Fetch(ctx context.Context, url string) ([]Language, error) {
	var buf bytes.Buffer
	err := requests.URL(url).
		CheckStatus(http.StatusOK).
		ToBytesBuffer(&buf).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(&buf)
}

// Parse returns the programming languages in a languages.yml document,
// ordered by name. Data, markup and prose entries are skipped.
func Parse(r io.Reader) ([]Language, error) {
	var doc map[string]entry
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	var languages []Language
	for name, e := range doc {
		if e.Type != "programming" {
			continue
		}
		languages = append(languages, Language{Name: name, Color: e.Color})
	}
	sort.Slice(languages, func(i, j int) bool {
		return languages[i].Name < languages[j].Name
	})
	return languages, nil
}
