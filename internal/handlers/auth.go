package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Skotchmaster/admin_console/internal/content"
	"github.com/Skotchmaster/admin_console/internal/service/auth"
	"github.com/Skotchmaster/admin_console/internal/session"
	"github.com/Skotchmaster/admin_console/pkg/logging"
	"github.com/labstack/echo/v4"
)

type ArticleSource interface {
	Articles(ctx context.Context, params map[string]any) (*content.ArticleList, error)
}

type AuthHandler struct {
	Svc     *auth.AuthService
	Content ArticleSource
}

func (h *AuthHandler) Captcha(c echo.Context) error {
	ctx := c.Request().Context()
	svg, err := h.Svc.Captcha(ctx, session.FromEcho(c))
	if err != nil {
		logging.FromContext(ctx).Error("captcha_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "captcha unavailable").SetInternal(err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, "image/svg+xml", []byte(svg))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var p auth.LoginParams
	if err := bind(c, &p); err != nil {
		return respond(c, nil, err)
	}
	res, err := h.Svc.Login(c.Request().Context(), p, session.FromEcho(c), c.RealIP())
	return respond(c, res, err)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	err := h.Svc.Logout(c.Request().Context(), session.FromEcho(c))
	return respond(c, struct{}{}, err)
}

func (h *AuthHandler) UserInfo(c echo.Context) error {
	v, err := h.Svc.CurrentUser(c.Request().Context(), session.FromEcho(c))
	return respond(c, v, err)
}

func (h *AuthHandler) Routes(c echo.Context) error {
	forest, err := h.Svc.DynamicRoutes(c.Request().Context(), session.FromEcho(c))
	return respond(c, forest, err)
}

func (h *AuthHandler) Locales(c echo.Context) error {
	m, err := h.Svc.Locales(c.Request().Context())
	return respond(c, m, err)
}

func (h *AuthHandler) Juejin(c echo.Context) error {
	params := map[string]any{}
	if c.Request().ContentLength != 0 {
		if err := bind(c, &params); err != nil {
			return respond(c, nil, err)
		}
	}
	list, err := h.Content.Articles(c.Request().Context(), params)
	return respond(c, list, err)
}

func (h *AuthHandler) UpdateUserInfo(c echo.Context) error {
	var p auth.ProfileParams
	if err := bind(c, &p); err != nil {
		return respond(c, nil, err)
	}
	u, err := h.Svc.UpdateProfile(c.Request().Context(), session.FromEcho(c), p)
	return respond(c, u, err)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var p auth.PasswordParams
	if err := bind(c, &p); err != nil {
		return respond(c, nil, err)
	}
	err := h.Svc.ChangePassword(c.Request().Context(), session.FromEcho(c), p)
	if errors.Is(err, auth.ErrCredentials) {
		return c.JSON(http.StatusOK, Envelope{Message: "old password is incorrect", Code: CodeFail})
	}
	return respond(c, struct{}{}, err)
}

func (h *AuthHandler) ChangeLabel(c echo.Context) error {
	var req struct {
		Tags []string `json:"tags"`
	}
	if err := bind(c, &req); err != nil {
		return respond(c, nil, err)
	}
	u, err := h.Svc.ChangeTags(c.Request().Context(), session.FromEcho(c), req.Tags)
	return respond(c, u, err)
}

func (h *AuthHandler) ChangeAvatar(c echo.Context) error {
	var req struct {
		AvatarURL string `json:"avatarUrl"`
	}
	if err := bind(c, &req); err != nil {
		return respond(c, nil, err)
	}
	u, err := h.Svc.ChangeAvatar(c.Request().Context(), session.FromEcho(c), req.AvatarURL)
	return respond(c, u, err)
}
