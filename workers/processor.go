// Package workers contains the background jobs run alongside the server.
package workers

import (
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
)

// process makes one pass through the rows matching the scope, calling fn for
// each one. A failure of fn is logged and the pass continues with the next
// row.
func process[T any](db *gorm.DB, logger *slog.Logger, scope func(*gorm.DB) *gorm.DB, fn func(*gorm.DB, T) error) error {
	var rows []T
	return db.Scopes(scope).FindInBatches(&rows, 100, func(_ *gorm.DB, batch int) error {
		return forEach(rows, func(row T) error {
			if err := fn(db, row); err != nil {
				logger.Error("process", "batch", batch, "error", err)
			}
			return nil
		})
	}).Error
}

func forEach[T any](a []T, fn func(T) error) error {
	for _, v := range a {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
