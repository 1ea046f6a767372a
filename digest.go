package main

import (
	"github.com/adoptoposs/adoptoposs/workers"
)

type DigestCmd struct {
}

// Run makes a single digest collection pass.
func (d *DigestCmd) Run(ctx *Context) error {
	db, err := ctx.openDB()
	if err != nil {
		return err
	}
	queued, err := workers.CollectDigests(db, ctx.Logger)
	if err != nil {
		return err
	}
	ctx.Logger.Info("digest pass complete", "queued", queued)
	return nil
}
