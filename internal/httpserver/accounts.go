package httpserver

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/viewtube/accounts/internal/apperr"
	"github.com/viewtube/accounts/internal/logging"
	"github.com/viewtube/accounts/internal/service"
	"github.com/viewtube/accounts/internal/tokens"
)

type AccountHTTP struct {
	Svc     *service.AccountService
	TempDir string
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.UploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(statusOf(apperr.KindOf(err)), apperr.Message(err))
}

// stageUpload copies a multipart file field to the temp dir and returns the
// local path, empty when the field is absent.
func (h *AccountHTTP) stageUpload(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(h.TempDir, uuid.NewString()+filepath.Ext(fh.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_register")

	avatarPath, err := h.stageUpload(c, "avatar")
	if err != nil {
		l.Error("staging avatar failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	coverPath, err := h.stageUpload(c, "coverImage")
	if err != nil {
		l.Error("staging cover failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	profile, err := h.Svc.Register(ctx, service.RegisterInput{
		FullName:   c.FormValue("fullName"),
		Email:      c.FormValue("email"),
		Username:   c.FormValue("username"),
		Password:   c.FormValue("password"),
		AvatarPath: avatarPath,
		CoverPath:  coverPath,
	})
	if err != nil {
		l.Warn("register failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"user": profile})
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_login")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	res, err := h.Svc.Login(ctx, identifier, req.Password)
	if err != nil {
		l.Warn("login failed", "error", err)
		return httpError(err)
	}

	h.setSessionCookies(c, res.Tokens)

	return c.JSON(http.StatusOK, echo.Map{
		"user":         res.User,
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
	})
}

func (h *AccountHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.Logout(ctx, userID(c)); err != nil {
		clearSessionCookies(c)
		return httpError(err)
	}

	clearSessionCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

func (h *AccountHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	incoming := ""
	if cookie, err := c.Cookie(tokens.RefreshCookie); err == nil {
		incoming = cookie.Value
	}
	if incoming == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.Bind(&req); err == nil {
			incoming = req.RefreshToken
		}
	}

	pair, err := h.Svc.Refresh(ctx, incoming)
	if err != nil {
		return httpError(err)
	}

	h.setSessionCookies(c, pair)

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *AccountHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ChangePassword(ctx, userID(c), req.OldPassword, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed successfully"})
}

func (h *AccountHTTP) Me(c echo.Context) error {
	profile, err := h.Svc.CurrentUser(c.Request().Context(), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": profile})
}

func (h *AccountHTTP) UpdateDetails(c echo.Context) error {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	profile, err := h.Svc.UpdateDetails(c.Request().Context(), userID(c), req.FullName, req.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": profile})
}

func (h *AccountHTTP) UpdateAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	path, err := h.stageUpload(c, "avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	profile, err := h.Svc.UpdateAvatar(ctx, userID(c), path)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": profile})
}

func (h *AccountHTTP) UpdateCoverImage(c echo.Context) error {
	ctx := c.Request().Context()

	path, err := h.stageUpload(c, "coverImage")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	profile, err := h.Svc.UpdateCoverImage(ctx, userID(c), path)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": profile})
}

func (h *AccountHTTP) ChannelProfile(c echo.Context) error {
	profile, err := h.Svc.ChannelProfile(c.Request().Context(), c.Param("username"), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"channel": profile})
}

func (h *AccountHTTP) WatchHistory(c echo.Context) error {
	items, err := h.Svc.WatchHistory(c.Request().Context(), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"history": items})
}

func (h *AccountHTTP) RecordView(c echo.Context) error {
	if err := h.Svc.RecordView(c.Request().Context(), userID(c), c.Param("videoId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHTTP) setSessionCookies(c echo.Context, pair *service.TokenPair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, "/", pair.AccessExpiresAt))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExpiresAt))
}

func clearSessionCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}
