package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/viewtube/accounts/internal/apperr"
	"github.com/viewtube/accounts/internal/media"
	"github.com/viewtube/accounts/internal/models"
	"github.com/viewtube/accounts/internal/repo"
)

type fakeStore struct {
	objects    map[string]string
	uploads    int
	failUpload bool
	failDelete bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}}
}

func (f *fakeStore) Upload(ctx context.Context, localPath string) (media.Asset, error) {
	if f.failUpload {
		return media.Asset{}, errors.New("upload rejected")
	}
	if _, err := os.Stat(localPath); err != nil {
		return media.Asset{}, err
	}
	f.uploads++
	key := fmt.Sprintf("assets/%d", f.uploads)
	f.objects[key] = localPath
	return media.Asset{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errors.New("delete rejected")
	}
	delete(f.objects, key)
	return nil
}

func newTestService(t *testing.T) (*AccountService, *fakeStore, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a second pooled connection would get its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Video{}, &models.Subscription{}, &models.WatchEntry{},
	))

	store := newFakeStore()
	svc := &AccountService{
		Users:         &repo.UserRepo{DB: db},
		Media:         store,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
	return svc, store, db
}

func tempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))
	return path
}

func registerInput(t *testing.T, username string) RegisterInput {
	return RegisterInput{
		FullName:   "Ada L",
		Email:      username + "@example.com",
		Username:   username,
		Password:   "s3cret!",
		AvatarPath: tempUpload(t),
	}
}

func TestAccountService_Register_Success(t *testing.T) {
	t.Parallel()

	svc, store, db := newTestService(t)
	ctx := context.Background()

	in := registerInput(t, "ada")
	profile, err := svc.Register(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "ada", profile.Username)
	assert.Equal(t, "Ada L", profile.FullName)
	assert.NotEmpty(t, profile.ID)
	assert.NotEmpty(t, profile.AvatarURL)

	// sanitized: only stored record carries the hash, never the raw password
	var user models.User
	require.NoError(t, db.Where("username = ?", "ada").First(&user).Error)
	assert.NotEqual(t, "s3cret!", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
	assert.Nil(t, user.RefreshToken)
	assert.NotEmpty(t, user.AvatarKey)
	assert.Contains(t, store.objects, user.AvatarKey)

	// staged temp file is consumed
	_, statErr := os.Stat(in.AvatarPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAccountService_Register_UppercaseUsernameNormalized(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	in := registerInput(t, "grace")
	in.Username = "GrAcE"
	profile, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "grace", profile.Username)
}

func TestAccountService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{name: "blank full name", mutate: func(in *RegisterInput) { in.FullName = "  " }},
		{name: "blank email", mutate: func(in *RegisterInput) { in.Email = "" }},
		{name: "blank username", mutate: func(in *RegisterInput) { in.Username = "" }},
		{name: "blank password", mutate: func(in *RegisterInput) { in.Password = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := registerInput(t, "lin")
			tt.mutate(&in)

			profile, err := svc.Register(ctx, in)
			require.Error(t, err)
			assert.Nil(t, profile)
			assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
		})
	}
}

func TestAccountService_Register_AvatarRequired(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	in := registerInput(t, "noavatar")
	in.AvatarPath = ""
	_, err := svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
}

func TestAccountService_Register_DuplicateConflict(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput(t, "ada"))
	require.NoError(t, err)

	// same username
	dup := registerInput(t, "ada")
	dup.Email = "other@example.com"
	_, err = svc.Register(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	// same email
	dup = registerInput(t, "ada2")
	dup.Email = "ada@example.com"
	_, err = svc.Register(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAccountService_Register_CoverFailureTolerated(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	in := registerInput(t, "nocover")
	in.CoverPath = filepath.Join(t.TempDir(), "does-not-exist.jpg")

	profile, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, profile.CoverURL)
	assert.NotEmpty(t, profile.AvatarURL)
}

func TestAccountService_Login_Success(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput(t, "ada"))
	require.NoError(t, err)

	res, err := svc.Login(ctx, "ada", "s3cret!")
	require.NoError(t, err)
	require.NotNil(t, res.Tokens)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, "ada", res.User.Username)

	// issued refresh token becomes the persisted value
	var user models.User
	require.NoError(t, db.Where("username = ?", "ada").First(&user).Error)
	require.NotNil(t, user.RefreshToken)
	assert.Equal(t, res.Tokens.RefreshToken, *user.RefreshToken)
}

func TestAccountService_Login_ByEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput(t, "ada"))
	require.NoError(t, err)

	res, err := svc.Login(ctx, "ada@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "ada", res.User.Username)
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput(t, "ada"))
	require.NoError(t, err)

	res, err := svc.Login(ctx, "ada", "wrong")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, apperr.IsKind(err, apperr.Unauthorized))

	var user models.User
	require.NoError(t, db.Where("username = ?", "ada").First(&user).Error)
	assert.Nil(t, user.RefreshToken)
}

func TestAccountService_Login_UnknownUser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	res, err := svc.Login(context.Background(), "ghost", "whatever")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestAccountService_ChangePassword(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, registerInput(t, "ada"))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, profile.ID, "wrong", "n3w-pass")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))

	require.NoError(t, svc.ChangePassword(ctx, profile.ID, "s3cret!", "n3w-pass"))

	_, err = svc.Login(ctx, "ada", "s3cret!")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Unauthorized))

	_, err = svc.Login(ctx, "ada", "n3w-pass")
	require.NoError(t, err)
}

func TestAccountService_UpdateDetails(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, registerInput(t, "ada"))
	require.NoError(t, err)

	_, err = svc.UpdateDetails(ctx, profile.ID, " ", "ada@example.com")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))

	updated, err := svc.UpdateDetails(ctx, profile.ID, "Ada Lovelace", "ada.l@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.FullName)
	assert.Equal(t, "ada.l@example.com", updated.Email)
}

func TestAccountService_ChannelProfile_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.ChannelProfile(context.Background(), "nobody", "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}
