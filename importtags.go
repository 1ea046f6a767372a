package main

import (
	"context"

	"github.com/adoptoposs/adoptoposs/internal/algorithms"
	"github.com/adoptoposs/adoptoposs/internal/linguist"
	"github.com/adoptoposs/adoptoposs/models"
)

type ImportTagsCmd struct {
	URL string `help:"URL of the Linguist languages.yml." default:"${linguist_url}"`
}

// Run upserts a language tag for every programming language Linguist knows
// about, plus the unknown tag.
func (i *ImportTagsCmd) Run(ctx *Context) error {
	db, err := ctx.openDB()
	if err != nil {
		return err
	}
	languages, err := linguist.Fetch(context.Background(), i.URL)
	if err != nil {
		return err
	}
	tags := algorithms.Map(languages, func(l linguist.Language) models.Tag {
		return models.Tag{Name: l.Name, Type: models.TagTypeLanguage, Color: l.Color}
	})
	tags = append(tags, models.Tag{Name: models.UnknownTagName, Type: models.TagTypeLanguage})
	imported, err := models.NewTags(db).UpsertAll(tags)
	if err != nil {
		return err
	}
	ctx.Logger.Info("imported tags", "url", i.URL, "count", len(imported))
	return nil
}
