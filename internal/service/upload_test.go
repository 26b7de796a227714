package service

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewtube/accounts/internal/apperr"
	"github.com/viewtube/accounts/internal/models"
)

func TestCommitAsset_EmptyPath(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.commitAsset(context.Background(), "", models.AssetRef{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
}

func TestCommitAsset_RemovesTempFileOnSuccess(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	path := tempUpload(t)

	ref, err := svc.commitAsset(context.Background(), path, models.AssetRef{})
	require.NoError(t, err)
	assert.NotEmpty(t, ref.URL)
	assert.NotEmpty(t, ref.Key)
	assert.Contains(t, store.objects, ref.Key)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCommitAsset_RemovesTempFileOnFailure(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	store.failUpload = true
	path := tempUpload(t)

	_, err := svc.commitAsset(context.Background(), path, models.AssetRef{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.UploadFailed))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCommitAsset_ReplacementDeletesPreviousObject(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	old, err := svc.commitAsset(ctx, tempUpload(t), models.AssetRef{})
	require.NoError(t, err)
	require.Contains(t, store.objects, old.Key)

	replacement, err := svc.commitAsset(ctx, tempUpload(t), old)
	require.NoError(t, err)
	assert.NotEqual(t, old.Key, replacement.Key)
	assert.NotContains(t, store.objects, old.Key)
	assert.Contains(t, store.objects, replacement.Key)
}

func TestCommitAsset_PreviousDeleteFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	old, err := svc.commitAsset(ctx, tempUpload(t), models.AssetRef{})
	require.NoError(t, err)

	store.failDelete = true
	replacement, err := svc.commitAsset(ctx, tempUpload(t), old)
	require.NoError(t, err)
	assert.NotEmpty(t, replacement.Key)
	// orphaned object stays behind; operation itself must not fail
	assert.Contains(t, store.objects, old.Key)
}

func TestUpdateAvatar_ReplacesRecordAndRemoteObject(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, registerInput(t, "ada"))
	require.NoError(t, err)

	user, err := svc.Users.ByID(ctx, profile.ID)
	require.NoError(t, err)
	oldKey := user.AvatarKey
	require.NotEmpty(t, oldKey)

	updated, err := svc.UpdateAvatar(ctx, profile.ID, tempUpload(t))
	require.NoError(t, err)
	assert.NotEqual(t, profile.AvatarURL, updated.AvatarURL)

	user, err = svc.Users.ByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, user.AvatarKey)
	assert.NotContains(t, store.objects, oldKey)
	assert.Contains(t, store.objects, user.AvatarKey)
}

func TestUpdateAvatar_UploadFailureLeavesRecordUntouched(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, registerInput(t, "ada"))
	require.NoError(t, err)

	user, err := svc.Users.ByID(ctx, profile.ID)
	require.NoError(t, err)
	oldKey := user.AvatarKey

	store.failUpload = true
	path := tempUpload(t)
	_, err = svc.UpdateAvatar(ctx, profile.ID, path)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.UploadFailed))

	// temp file is still cleaned up, record and remote object unchanged
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	user, err = svc.Users.ByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, oldKey, user.AvatarKey)
	assert.Contains(t, store.objects, oldKey)
}

func TestUpdateCoverImage_SetsAndReplaces(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, registerInput(t, "ada"))
	require.NoError(t, err)

	first, err := svc.UpdateCoverImage(ctx, profile.ID, tempUpload(t))
	require.NoError(t, err)
	assert.NotEmpty(t, first.CoverURL)

	user, err := svc.Users.ByID(ctx, profile.ID)
	require.NoError(t, err)
	firstKey := user.CoverKey

	_, err = svc.UpdateCoverImage(ctx, profile.ID, tempUpload(t))
	require.NoError(t, err)

	user, err = svc.Users.ByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, user.CoverKey)
	assert.NotContains(t, store.objects, firstKey)
}
