package workers

import (
	"context"
	"time"

	"github.com/adoptoposs/adoptoposs/models"
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
)

// NewDigestProcessor returns a worker which collects digests for every
// subscribed user each interval until its context is canceled.
func NewDigestProcessor(db *gorm.DB, logger *slog.Logger, interval time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger := logger.With("worker", "digests")
		logger.Info("started", "interval", interval)
		defer logger.Info("stopped")

		db := db.WithContext(ctx)
		for {
			if _, err := CollectDigests(db, logger); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
				// continue
			}
		}
	}
}

// CollectDigests makes one pass over the users with at least one tag
// subscription, queueing digests for projects published since their last
// pass. It returns the number of digests queued.
func CollectDigests(db *gorm.DB, logger *slog.Logger) (int, error) {
	digests := models.NewDigests(db)
	var queued int
	err := process(db, logger, subscribedUsers, func(db *gorm.DB, user *models.User) error {
		n, err := digests.Collect(user)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("digests queued", "user", user.Username, "count", n)
		}
		queued += n
		return nil
	})
	return queued, err
}

func subscribedUsers(db *gorm.DB) *gorm.DB {
	return db.Where("EXISTS (SELECT 1 FROM tag_subscriptions WHERE tag_subscriptions.user_id = users.id)")
}
