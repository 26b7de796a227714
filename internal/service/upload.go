package service

import (
	"context"
	"os"

	"github.com/viewtube/accounts/internal/apperr"
	"github.com/viewtube/accounts/internal/events"
	"github.com/viewtube/accounts/internal/logging"
	"github.com/viewtube/accounts/internal/models"
)

// commitAsset uploads the staged local file to the remote store and returns
// the new reference. The local temp file is removed whether or not the
// upload succeeds. When prev is set (replacing an existing avatar or cover)
// the old remote object is deleted only after the replacement is confirmed
// valid; a failed deletion is surfaced but does not fail the operation.
func (s *AccountService) commitAsset(ctx context.Context, localPath string, prev models.AssetRef) (models.AssetRef, error) {
	if localPath == "" {
		return models.AssetRef{}, apperr.New(apperr.InvalidInput, "file is required")
	}

	asset, err := s.Media.Upload(ctx, localPath)
	s.removeLocal(ctx, localPath)
	if err != nil {
		return models.AssetRef{}, apperr.Wrap(apperr.UploadFailed, "file upload failed", err)
	}
	if asset.URL == "" || asset.Key == "" {
		return models.AssetRef{}, apperr.New(apperr.UploadFailed, "upload returned an incomplete reference")
	}

	if prev.Key != "" {
		if err := s.Media.Delete(ctx, prev.Key); err != nil {
			logging.FromContext(ctx).Error("replaced asset not deleted",
				"key", prev.Key, "error", err)
			s.publish(ctx, events.AccountEvent{
				Type:     events.TypeAssetOrphaned,
				AssetKey: prev.Key,
			})
		}
	}

	return models.AssetRef{URL: asset.URL, Key: asset.Key}, nil
}

func (s *AccountService) removeLocal(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.FromContext(ctx).Warn("temp file not removed", "path", path, "error", err)
	}
}
