package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/viewtube/accounts/internal/middleware"
)

type Deps struct {
	Account   *AccountHTTP
	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := middleware.NewSimpleAuth(d.JWTSecret)

	e.POST("/register", d.Account.Register)
	e.POST("/login", d.Account.Login)
	e.POST("/refresh", d.Account.Refresh)

	private := e.Group("")
	private.Use(authMw.RequireAuth)

	private.POST("/logout", d.Account.Logout)
	private.POST("/password", d.Account.ChangePassword)
	private.GET("/me", d.Account.Me)
	private.PATCH("/me", d.Account.UpdateDetails)
	private.PATCH("/me/avatar", d.Account.UpdateAvatar)
	private.PATCH("/me/cover", d.Account.UpdateCoverImage)
	private.GET("/channels/:username", d.Account.ChannelProfile)
	private.GET("/history", d.Account.WatchHistory)
	private.POST("/history/:videoId", d.Account.RecordView)
}
