package models

import (
	"errors"
	"strings"
	"time"

	"github.com/adoptoposs/adoptoposs/internal/validation"
	"gorm.io/gorm"
)

// A User owns projects and follows tags through TagSubscriptions.
// Provider and ProviderToken identify the repository host the user signed in
// with and the credential used to query it.
type User struct {
	ID            uint32 `gorm:"primarykey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Name          string `gorm:"size:128"`
	Username      string `gorm:"size:64;uniqueIndex;not null"`
	Email         string `gorm:"size:128"`
	AvatarURL     string `gorm:"size:255"`
	Provider      string `gorm:"size:16;not null;default:'github'"`
	ProviderToken string `gorm:"size:255"`
	LastDigestAt  time.Time
}

// UserAttrs are the attributes accepted when creating a user.
type UserAttrs struct {
	Name          string `json:"name" validate:"max=128"`
	Username      string `json:"username" validate:"required,max=64"`
	Email         string `json:"email" validate:"omitempty,email"`
	AvatarURL     string `json:"avatar_url" validate:"omitempty,url"`
	Provider      string `json:"provider" validate:"required,oneof=github"`
	ProviderToken string `json:"-"`
}

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create validates attrs and creates a new user.
func (u *Users) Create(attrs UserAttrs) (*User, error) {
	attrs.Username = strings.TrimSpace(attrs.Username)
	if attrs.Provider == "" {
		attrs.Provider = "github"
	}
	if err := validation.New().Struct(attrs); err != nil {
		return nil, err
	}
	var taken int64
	if err := u.db.Model(&User{}).Where("username = ?", attrs.Username).Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, validation.Errorf("username", "has already been taken")
	}
	user := &User{
		Name:          attrs.Name,
		Username:      attrs.Username,
		Email:         attrs.Email,
		AvatarURL:     attrs.AvatarURL,
		Provider:      attrs.Provider,
		ProviderToken: attrs.ProviderToken,
		LastDigestAt:  time.Now(),
	}
	if err := u.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validation.Errorf("username", "has already been taken")
		}
		return nil, err
	}
	return user, nil
}

// FindByID returns the user with the given id.
func (u *Users) FindByID(id uint32) (*User, error) {
	var user User
	if err := u.db.Take(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername returns the user with the given username.
func (u *Users) FindByUsername(username string) (*User, error) {
	var user User
	if err := u.db.Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
