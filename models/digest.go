package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// A Digest queues a newly published project for a user who subscribes to
// the project's language.
type Digest struct {
	ID        uint32 `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint32   `gorm:"uniqueIndex:uidx_digests_user_id_project_id;not null"`
	User      *User    `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	ProjectID uint32   `gorm:"uniqueIndex:uidx_digests_user_id_project_id;not null"`
	Project   *Project `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	TagID     uint32   `gorm:"not null"`
	Tag       *Tag     `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
}

type Digests struct {
	db *gorm.DB
}

func NewDigests(db *gorm.DB) *Digests {
	return &Digests{db: db}
}

// Collect queues a digest for every project published since the user was
// last collected whose language the user subscribes to. The user's own
// projects are skipped. It returns the number of digests queued.
func (d *Digests) Collect(user *User) (int, error) {
	now := time.Now()
	var queued int
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var projects []Project
		err := tx.Select("projects.*").
			Joins("JOIN tag_subscriptions ON tag_subscriptions.tag_id = projects.language_id").
			Where("tag_subscriptions.user_id = ?", user.ID).
			Where("projects.user_id <> ?", user.ID).
			Where("projects.status = ?", ProjectPublished).
			Where("projects.created_at > ? AND projects.created_at <= ?", user.LastDigestAt, now).
			Order("projects.id").
			Find(&projects).Error
		if err != nil {
			return err
		}
		if len(projects) > 0 {
			digests := make([]Digest, 0, len(projects))
			for _, p := range projects {
				digests = append(digests, Digest{
					UserID:    user.ID,
					ProjectID: p.ID,
					TagID:     p.LanguageID,
				})
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&digests)
			if res.Error != nil {
				return res.Error
			}
			queued = int(res.RowsAffected)
		}
		user.LastDigestAt = now
		return tx.Model(user).UpdateColumn("last_digest_at", now).Error
	})
	return queued, err
}

// ListByUser returns the digests queued for user, newest first.
func (d *Digests) ListByUser(user *User) ([]Digest, error) {
	digests := []Digest{}
	err := d.db.Preload("Project").Preload("Project.User").Preload("Tag").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").Order("id DESC").
		Find(&digests).Error
	if err != nil {
		return nil, err
	}
	return digests, nil
}

// Prune deletes digests created before the given time and returns how many
// were removed.
func (d *Digests) Prune(before time.Time) (int64, error) {
	res := d.db.Where("created_at < ?", before).Delete(&Digest{})
	return res.RowsAffected, res.Error
}
