package service

import (
	"context"
	"errors"
	"strings"

	"github.com/viewtube/accounts/internal/apperr"
	"github.com/viewtube/accounts/internal/events"
	"github.com/viewtube/accounts/internal/hash"
	"github.com/viewtube/accounts/internal/logging"
	"github.com/viewtube/accounts/internal/models"
	"github.com/viewtube/accounts/internal/repo"
)

type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	AvatarPath string
	CoverPath  string
}

type LoginResult struct {
	User   *models.Profile
	Tokens *TokenPair
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	l := logging.FromContext(ctx).With("svc", "account.register")

	if blank(in.FullName) || blank(in.Email) || blank(in.Username) || blank(in.Password) {
		return nil, apperr.New(apperr.InvalidInput, "all fields are required")
	}

	taken, err := s.Users.UsernameOrEmailTaken(ctx, in.Username, in.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	if taken {
		return nil, apperr.New(apperr.Conflict, "username or email already exists")
	}

	if in.AvatarPath == "" {
		return nil, apperr.New(apperr.InvalidInput, "avatar is required")
	}

	avatar, err := s.commitAsset(ctx, in.AvatarPath, models.AssetRef{})
	if err != nil {
		return nil, err
	}

	// The cover image is optional; a failed upload degrades to no cover.
	var cover models.AssetRef
	if in.CoverPath != "" {
		cover, err = s.commitAsset(ctx, in.CoverPath, models.AssetRef{})
		if err != nil {
			l.Warn("cover upload skipped", "error", err)
			cover = models.AssetRef{}
		}
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	user := models.User{
		Username:     strings.ToLower(strings.TrimSpace(in.Username)),
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: pwHash,
		AvatarURL:    avatar.URL,
		AvatarKey:    avatar.Key,
		CoverURL:     cover.URL,
		CoverKey:     cover.Key,
	}
	if err := s.Users.Create(ctx, &user); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "something went wrong while registering user", err)
	}

	s.publish(ctx, events.AccountEvent{
		Type:     events.TypeUserRegistered,
		UserID:   user.ID,
		Username: user.Username,
	})
	s.indexChannel(ctx, &user)

	l.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user.Profile(), nil
}

func (s *AccountService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.login")

	if blank(identifier) {
		return nil, apperr.New(apperr.InvalidInput, "email or username is required")
	}
	if blank(password) {
		return nil, apperr.New(apperr.InvalidInput, "password is required")
	}

	user, err := s.Users.ByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	ok, err := hash.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	if !ok {
		l.Warn("login failed", "user_id", user.ID)
		return nil, apperr.New(apperr.Unauthorized, "invalid user credentials")
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	l.Info("login successful", "user_id", user.ID)
	return &LoginResult{User: user.Profile(), Tokens: pair}, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	ok, err := hash.CheckPassword(user.PasswordHash, oldPassword)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	if !ok {
		return apperr.New(apperr.InvalidInput, "old password is incorrect")
	}
	if blank(newPassword) {
		return apperr.New(apperr.InvalidInput, "new password is required")
	}

	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	if err := s.Users.SetPasswordHash(ctx, user.ID, newHash); err != nil {
		return apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	s.publish(ctx, events.AccountEvent{Type: events.TypePasswordChanged, UserID: user.ID})
	return nil
}

func (s *AccountService) CurrentUser(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	return user.Profile(), nil
}

func (s *AccountService) UpdateDetails(ctx context.Context, userID, fullName, email string) (*models.Profile, error) {
	if blank(fullName) || blank(email) {
		return nil, apperr.New(apperr.InvalidInput, "full name and email are required")
	}

	if err := s.Users.UpdateDetails(ctx, userID, strings.TrimSpace(fullName), strings.TrimSpace(email)); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	s.indexChannel(ctx, user)
	return user.Profile(), nil
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID, localPath string) (*models.Profile, error) {
	if localPath == "" {
		return nil, apperr.New(apperr.InvalidInput, "avatar file is missing")
	}

	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	ref, err := s.commitAsset(ctx, localPath, user.Avatar())
	if err != nil {
		return nil, err
	}
	if err := s.Users.SetAvatar(ctx, user.ID, ref); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	user.AvatarURL, user.AvatarKey = ref.URL, ref.Key
	s.publish(ctx, events.AccountEvent{
		Type:     events.TypeAvatarUpdated,
		UserID:   user.ID,
		Username: user.Username,
	})
	s.indexChannel(ctx, user)

	return user.Profile(), nil
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.Profile, error) {
	if localPath == "" {
		return nil, apperr.New(apperr.InvalidInput, "cover image file is missing")
	}

	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	ref, err := s.commitAsset(ctx, localPath, user.Cover())
	if err != nil {
		return nil, err
	}
	if err := s.Users.SetCover(ctx, user.ID, ref); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	user.CoverURL, user.CoverKey = ref.URL, ref.Key
	s.publish(ctx, events.AccountEvent{
		Type:     events.TypeCoverUpdated,
		UserID:   user.ID,
		Username: user.Username,
	})

	return user.Profile(), nil
}

func (s *AccountService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	if blank(username) {
		return nil, apperr.New(apperr.InvalidInput, "username is missing")
	}

	profile, err := s.Users.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "channel not found", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	return profile, nil
}

func (s *AccountService) WatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryItem, error) {
	items, err := s.Users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	return items, nil
}

// RecordView appends a watched video to the user's history.
func (s *AccountService) RecordView(ctx context.Context, userID, videoID string) error {
	if blank(videoID) {
		return apperr.New(apperr.InvalidInput, "video id is required")
	}
	if err := s.Users.RecordView(ctx, userID, videoID); err != nil {
		return apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	return nil
}
