package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetRef identifies an uploaded media object in the remote store. A user
// record either carries both fields of a ref or neither.
type AssetRef struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func (a AssetRef) Empty() bool { return a.Key == "" && a.URL == "" }

type User struct {
	ID           string  `gorm:"type:uuid;primaryKey"       json:"id"`
	Username     string  `gorm:"uniqueIndex;not null"       json:"username"`
	Email        string  `gorm:"uniqueIndex;not null"       json:"email"`
	FullName     string  `gorm:"not null"                   json:"fullName"`
	PasswordHash string  `gorm:"not null"                   json:"-"`
	AvatarURL    string  `json:"avatarUrl"`
	AvatarKey    string  `json:"-"`
	CoverURL     string  `json:"coverUrl"`
	CoverKey     string  `json:"-"`
	RefreshToken *string `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Username = strings.ToLower(u.Username)
	return nil
}

func (u *User) Avatar() AssetRef { return AssetRef{URL: u.AvatarURL, Key: u.AvatarKey} }
func (u *User) Cover() AssetRef  { return AssetRef{URL: u.CoverURL, Key: u.CoverKey} }

// Profile is the sanitized projection returned to clients: no password hash,
// no refresh token.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl"`
	CoverURL  string    `json:"coverUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
	}
}

type Video struct {
	ID              string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         string `gorm:"type:uuid;index;not null" json:"ownerId"`
	Title           string `gorm:"not null" json:"title"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	DurationSeconds int    `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// Subscription is an edge: subscriber follows channel.
type Subscription struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SubscriberID string `gorm:"type:uuid;index;not null;uniqueIndex:idx_sub_edge" json:"subscriberId"`
	ChannelID    string `gorm:"type:uuid;index;not null;uniqueIndex:idx_sub_edge" json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WatchEntry rows are append-order: the autoincrement id doubles as the
// position in the user's history.
type WatchEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"userId"`
	VideoID   string    `gorm:"type:uuid;not null" json:"videoId"`
	WatchedAt time.Time `json:"watchedAt"`
}

type ChannelProfile struct {
	ID                   string `json:"id"`
	Username             string `json:"username"`
	FullName             string `json:"fullName"`
	Email                string `json:"email"`
	AvatarURL            string `json:"avatarUrl"`
	CoverURL             string `json:"coverUrl"`
	SubscriberCount      int64  `json:"subscriberCount"`
	ChannelsSubscribedTo int64  `json:"channelsSubscribedTo"`
	IsSubscribed         bool   `json:"isSubscribed"`
}

type OwnerProfile struct {
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

type WatchHistoryItem struct {
	VideoID         string       `json:"videoId"`
	Title           string       `json:"title"`
	ThumbnailURL    string       `json:"thumbnailUrl"`
	DurationSeconds int          `json:"durationSeconds"`
	WatchedAt       time.Time    `json:"watchedAt"`
	Owner           OwnerProfile `json:"owner"`
}
