package models

import (
	"errors"
	"time"

	"github.com/adoptoposs/adoptoposs/internal/validation"
	"gorm.io/gorm"
)

// A TagSubscription records a user's interest in a Tag. Subscriptions decide
// which newly published projects are collected into the user's digests.
type TagSubscription struct {
	ID        uint32 `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint32 `gorm:"uniqueIndex:uidx_tag_subscriptions_user_id_tag_id;not null"`
	User      *User  `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	TagID     uint32 `gorm:"uniqueIndex:uidx_tag_subscriptions_user_id_tag_id;not null;index"`
	Tag       *Tag   `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
}

type TagSubscriptions struct {
	db *gorm.DB
}

func NewTagSubscriptions(db *gorm.DB) *TagSubscriptions {
	return &TagSubscriptions{db: db}
}

// ListByUser returns the user's subscriptions in the order they were created.
func (s *TagSubscriptions) ListByUser(user *User) ([]TagSubscription, error) {
	subscriptions := []TagSubscription{}
	err := s.db.Preload("Tag").
		Where("user_id = ?", user.ID).
		Order("created_at ASC").Order("id ASC").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

// FindByID returns the subscription with the given id, with its tag.
func (s *TagSubscriptions) FindByID(id uint32) (*TagSubscription, error) {
	var subscription TagSubscription
	if err := s.db.Preload("Tag").Take(&subscription, id).Error; err != nil {
		return nil, err
	}
	return &subscription, nil
}

// Create subscribes user to tag.
func (s *TagSubscriptions) Create(user *User, tag *Tag) (*TagSubscription, error) {
	subscription := &TagSubscription{
		UserID: user.ID,
		TagID:  tag.ID,
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return create(tx, subscription)
	}); err != nil {
		return nil, err
	}
	subscription.Tag = tag
	return subscription, nil
}

// CreateAll subscribes user to each of tags. Either all subscriptions are
// created or none are.
func (s *TagSubscriptions) CreateAll(user *User, tags []Tag) ([]TagSubscription, error) {
	subscriptions := make([]TagSubscription, 0, len(tags))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range tags {
			subscription := TagSubscription{
				UserID: user.ID,
				TagID:  tags[i].ID,
			}
			if err := create(tx, &subscription); err != nil {
				return err
			}
			subscription.Tag = &tags[i]
			subscriptions = append(subscriptions, subscription)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func create(tx *gorm.DB, subscription *TagSubscription) error {
	var taken int64
	if err := tx.Model(&TagSubscription{}).Where("user_id = ? AND tag_id = ?", subscription.UserID, subscription.TagID).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return validation.Errorf("tag", "is already subscribed")
	}
	if err := tx.Create(subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return validation.Errorf("tag", "is already subscribed")
		}
		return err
	}
	return nil
}

// Delete deletes subscription.
func (s *TagSubscriptions) Delete(subscription *TagSubscription) error {
	return s.db.Delete(subscription).Error
}
