package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Skotchmaster/admin_console/internal/announce"
	"github.com/Skotchmaster/admin_console/internal/handlers"
	"github.com/Skotchmaster/admin_console/internal/metrics"
	authmw "github.com/Skotchmaster/admin_console/internal/middleware/auth"
	"github.com/Skotchmaster/admin_console/internal/middleware/csrf"
	"github.com/Skotchmaster/admin_console/internal/oplog"
	"github.com/Skotchmaster/admin_console/internal/session"
	loggingmw "github.com/Skotchmaster/admin_console/pkg/middleware/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Deps struct {
	Logger *slog.Logger

	Auth   *handlers.AuthHandler
	System *handlers.SystemHandler

	Sessions session.Store
	Cookie   session.CookieOptions
	Tokens   authmw.TokenVerifier

	Hub      *announce.Hub
	Metrics  *metrics.Metrics
	Recorder *oplog.Recorder

	// CSRF is nil when the double-submit check is off.
	CSRF *csrf.Config

	// Ready reports whether the backing stores answer.
	Ready func(ctx context.Context) error
}

func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))
	if d.Metrics != nil {
		e.Use(d.Metrics.Instrument())
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	withSession := []echo.MiddlewareFunc{session.Middleware(d.Sessions, d.Cookie)}
	if d.CSRF != nil {
		withSession = append(withSession, csrf.Middleware(*d.CSRF))
	}

	v1 := e.Group("/api/v1", withSession...)

	pub := v1.Group("/auth")
	pub.GET("/captcha", d.Auth.Captcha)
	pub.POST("/login", d.Auth.Login)
	pub.GET("/locales", d.Auth.Locales)
	pub.POST("/juejin", d.Auth.Juejin)

	guarded := []echo.MiddlewareFunc{authmw.RequireAuth(d.Tokens)}
	if d.Recorder != nil {
		guarded = append(guarded, d.Recorder.Middleware())
	}

	priv := v1.Group("", guarded...)
	priv.POST("/auth/logout", d.Auth.Logout)
	priv.GET("/auth/user-info", d.Auth.UserInfo)
	priv.GET("/auth/routes", d.Auth.Routes)

	home := priv.Group("/home")
	home.POST("/update-user-info", d.Auth.UpdateUserInfo)
	home.POST("/change-password", d.Auth.ChangePassword)
	home.POST("/change-label", d.Auth.ChangeLabel)
	home.POST("/change-avatar", d.Auth.ChangeAvatar)

	sys := priv.Group("/system")

	sys.GET("/roles", d.System.ListRoles)
	sys.POST("/roles", d.System.SaveRole)
	sys.DELETE("/roles/:id", d.System.DeleteRole)

	sys.GET("/menus", d.System.MenuTree)
	sys.POST("/menus", d.System.SaveMenu)
	sys.DELETE("/menus/:id", d.System.DeleteMenu)

	sys.GET("/users", d.System.ListUsers)
	sys.POST("/users", d.System.SaveUser)
	sys.DELETE("/users/:id", d.System.DeleteUser)

	sys.GET("/announcements", d.System.ListAnnouncements)
	sys.POST("/announcements", d.System.SaveAnnouncement)
	sys.POST("/announcements/:id/read", d.System.ReadAnnouncement)
	sys.DELETE("/announcements/:id", d.System.DeleteAnnouncement)

	sys.GET("/logs", d.System.ListLogs)
	sys.GET("/logs/search", d.System.SearchLogs)

	if d.Hub != nil {
		// Browsers cannot set headers on the upgrade request, so the socket
		// relies on the signed-in session alone.
		ws := e.Group("/ws", session.Middleware(d.Sessions, d.Cookie), requireSession)
		ws.GET("/announcement", d.Hub.Handler(func(c echo.Context) string {
			return session.FromEcho(c).State.User.ID
		}))
	}
}

func requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromEcho(c)
		if s == nil || !s.State.Authenticated() {
			return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
		}
		c.Set(loggingmw.CtxUserID, s.State.User.ID)
		return next(c)
	}
}
