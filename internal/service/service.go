package service

import (
	"context"
	"time"

	"github.com/viewtube/accounts/internal/events"
	"github.com/viewtube/accounts/internal/logging"
	"github.com/viewtube/accounts/internal/media"
	"github.com/viewtube/accounts/internal/models"
	"github.com/viewtube/accounts/internal/repo"
)

// Publisher emits account events. Publishing is best-effort: the account
// flows log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, event events.AccountEvent) error
}

// ChannelIndexer mirrors channel profiles into the search index,
// best-effort like Publisher.
type ChannelIndexer interface {
	IndexChannel(ctx context.Context, u *models.User) error
}

type AccountService struct {
	Users  *repo.UserRepo
	Media  media.Store
	Events Publisher      // optional
	Search ChannelIndexer // optional

	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func (s *AccountService) publish(ctx context.Context, event events.AccountEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "type", event.Type, "error", err)
	}
}

func (s *AccountService) indexChannel(ctx context.Context, u *models.User) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexChannel(ctx, u); err != nil {
		logging.FromContext(ctx).Warn("channel index failed", "username", u.Username, "error", err)
	}
}
