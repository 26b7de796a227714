package service

import (
	"context"
	"errors"
	"time"

	"github.com/viewtube/accounts/internal/apperr"
	"github.com/viewtube/accounts/internal/logging"
	"github.com/viewtube/accounts/internal/repo"
	"github.com/viewtube/accounts/internal/tokens"
)

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// issueTokens mints an access/refresh pair for the user and persists the
// refresh token as the single currently-valid one (last write wins).
func (s *AccountService) issueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "something went wrong while generating tokens", err)
	}

	accessExp := time.Now().Add(s.AccessTTL)
	accessToken, err := tokens.NewAccessToken(user.ID, user.Username, s.JWTSecret, accessExp)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "something went wrong while generating tokens", err)
	}

	refreshExp := time.Now().Add(s.RefreshTTL)
	refreshToken, err := tokens.NewRefreshToken(user.ID, s.RefreshSecret, refreshExp)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "something went wrong while generating tokens", err)
	}

	if err := s.Users.SetRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "something went wrong while generating tokens", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh rotates the refresh token: the incoming token must be
// cryptographically valid and equal to the persisted value. A valid but
// superseded token is rejected, which is what makes replayed tokens
// unusable after a rotation or logout.
func (s *AccountService) Refresh(ctx context.Context, incoming string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "account.refresh")

	if incoming == "" {
		return nil, apperr.New(apperr.Unauthorized, "unauthorized request")
	}

	claims, err := tokens.RefreshClaimsFromToken(incoming, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh rejected", "reason", "verification failed", "error", err)
		return nil, &apperr.Error{Kind: apperr.Unauthorized, Message: err.Error(), Err: err}
	}

	user, err := s.Users.ByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != incoming {
		l.Warn("refresh rejected", "reason", "token superseded", "user_id", user.ID)
		return nil, apperr.New(apperr.Unauthorized, "refresh token is expired or used")
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	l.Info("tokens rotated", "user_id", user.ID)
	return pair, nil
}

// Logout clears the persisted refresh token unconditionally.
func (s *AccountService) Logout(ctx context.Context, userID string) error {
	if err := s.Users.SetRefreshToken(ctx, userID, nil); err != nil {
		return apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	logging.FromContext(ctx).Info("logged out", "svc", "account.logout", "user_id", userID)
	return nil
}
