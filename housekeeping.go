package main

import (
	"time"

	"github.com/adoptoposs/adoptoposs/models"
	"gorm.io/gorm"
)

type HouseKeepingCmd struct {
	DigestAge time.Duration `default:"720h" help:"delete digests older than this"`
}

func (c *HouseKeepingCmd) Run(ctx *Context) error {
	db, err := ctx.openDB()
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		pruned, err := models.NewDigests(tx).Prune(time.Now().Add(-c.DigestAge))
		if err != nil {
			return err
		}
		ctx.Logger.Info("deleted", "count", pruned, "what", "old digests")

		// delete topic tags nobody subscribes to and no project uses
		res := tx.Exec(`
			DELETE FROM tags
			WHERE type = ?
			AND id NOT IN (SELECT tag_id FROM tag_subscriptions)
			AND id NOT IN (SELECT language_id FROM projects)
		`, models.TagTypeTopic)
		if res.Error != nil {
			return res.Error
		}
		ctx.Logger.Info("deleted", "count", res.RowsAffected, "what", "unused topic tags")
		return nil
	})
}
