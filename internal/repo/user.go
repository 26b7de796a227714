package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/viewtube/accounts/internal/models"
)

var ErrNotFound = errors.New("record not found")

type UserRepo struct {
	DB *gorm.DB
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ByIdentifier finds a user by username or email, the login lookup.
func (r *UserRepo) ByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	ident := strings.ToLower(strings.TrimSpace(identifier))
	err := r.DB.WithContext(ctx).
		Where("username = ? OR email = ?", ident, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", strings.ToLower(username), email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetRefreshToken writes only the refresh_token column so that no other
// validation or hook path can block the save. A nil token clears it.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id string, token *string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Select("refresh_token").
		Updates(map[string]any{"refresh_token": token}).Error
}

func (r *UserRepo) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Select("password_hash").
		Updates(map[string]any{"password_hash": passwordHash}).Error
}

func (r *UserRepo) SetAvatar(ctx context.Context, id string, ref models.AssetRef) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Select("avatar_url", "avatar_key").
		Updates(map[string]any{"avatar_url": ref.URL, "avatar_key": ref.Key}).Error
}

func (r *UserRepo) SetCover(ctx context.Context, id string, ref models.AssetRef) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Select("cover_url", "cover_key").
		Updates(map[string]any{"cover_url": ref.URL, "cover_key": ref.Key}).Error
}

func (r *UserRepo) UpdateDetails(ctx context.Context, id, fullName, email string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Select("full_name", "email").
		Updates(map[string]any{"full_name": fullName, "email": email}).Error
}
