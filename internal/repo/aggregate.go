package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/viewtube/accounts/internal/models"
)

// ChannelProfile resolves a channel by username and aggregates its
// subscription edges. isSubscribed is true iff viewerID appears among the
// channel's subscriber edge sources; an empty viewerID means an anonymous
// viewer.
func (r *UserRepo) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	profile := &models.ChannelProfile{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		CoverURL:  user.CoverURL,
	}

	db := r.DB.WithContext(ctx).Model(&models.Subscription{})
	if err := db.Where("channel_id = ?", user.ID).Count(&profile.SubscriberCount).Error; err != nil {
		return nil, err
	}

	db = r.DB.WithContext(ctx).Model(&models.Subscription{})
	if err := db.Where("subscriber_id = ?", user.ID).Count(&profile.ChannelsSubscribedTo).Error; err != nil {
		return nil, err
	}

	if viewerID != "" {
		var count int64
		db = r.DB.WithContext(ctx).Model(&models.Subscription{})
		err := db.Where("channel_id = ? AND subscriber_id = ?", user.ID, viewerID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		profile.IsSubscribed = count > 0
	}

	return profile, nil
}

type watchRow struct {
	VideoID         string
	Title           string
	ThumbnailURL    string
	DurationSeconds int
	WatchedAt       time.Time
	OwnerUsername   string
	OwnerFullName   string
	OwnerAvatarURL  string
}

// WatchHistory joins the user's watch entries with the videos and a minimal
// owner projection, most recent first.
func (r *UserRepo) WatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryItem, error) {
	var rows []watchRow
	err := r.DB.WithContext(ctx).
		Table("watch_entries").
		Select(`videos.id AS video_id,
			videos.title,
			videos.thumbnail_url,
			videos.duration_seconds,
			watch_entries.watched_at,
			owners.username AS owner_username,
			owners.full_name AS owner_full_name,
			owners.avatar_url AS owner_avatar_url`).
		Joins("JOIN videos ON videos.id = watch_entries.video_id").
		Joins("JOIN users owners ON owners.id = videos.owner_id").
		Where("watch_entries.user_id = ?", userID).
		Order("watch_entries.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]models.WatchHistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.WatchHistoryItem{
			VideoID:         row.VideoID,
			Title:           row.Title,
			ThumbnailURL:    row.ThumbnailURL,
			DurationSeconds: row.DurationSeconds,
			WatchedAt:       row.WatchedAt,
			Owner: models.OwnerProfile{
				Username:  row.OwnerUsername,
				FullName:  row.OwnerFullName,
				AvatarURL: row.OwnerAvatarURL,
			},
		})
	}
	return items, nil
}

// RecordView appends a video to the user's watch history.
func (r *UserRepo) RecordView(ctx context.Context, userID, videoID string) error {
	entry := models.WatchEntry{
		UserID:    userID,
		VideoID:   videoID,
		WatchedAt: time.Now().UTC(),
	}
	return r.DB.WithContext(ctx).Create(&entry).Error
}
