package handlers

import (
	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/service/system"
	"github.com/Skotchmaster/admin_console/internal/session"
	"github.com/Skotchmaster/admin_console/internal/util"
	"github.com/labstack/echo/v4"
)

type SystemHandler struct {
	Svc *system.SystemService
}

func pageQuery(c echo.Context) system.PageQuery {
	return system.PageQuery{
		Page: util.ParseIntDefault(c.QueryParam("current"), util.ParseIntDefault(c.QueryParam("page"), 1)),
		Size: util.ParseIntDefault(c.QueryParam("pageSize"), util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)),
	}
}

func callerID(c echo.Context) string {
	if s := session.FromEcho(c); s != nil && s.State.Authenticated() {
		return s.State.User.ID
	}
	return ""
}

func (h *SystemHandler) ListRoles(c echo.Context) error {
	page, err := h.Svc.ListRoles(c.Request().Context(), system.RoleQuery{
		PageQuery: pageQuery(c),
		Name:      c.QueryParam("name"),
		Code:      c.QueryParam("code"),
	})
	return respond(c, page, err)
}

func (h *SystemHandler) SaveRole(c echo.Context) error {
	var p system.SaveRoleParams
	if err := bind(c, &p); err != nil {
		return respond(c, nil, err)
	}
	r, err := h.Svc.SaveRole(c.Request().Context(), p)
	return respond(c, r, err)
}

func (h *SystemHandler) DeleteRole(c echo.Context) error {
	return respond(c, struct{}{}, h.Svc.DeleteRole(c.Request().Context(), c.Param("id")))
}

func (h *SystemHandler) MenuTree(c echo.Context) error {
	tree, err := h.Svc.MenuTree(c.Request().Context())
	return respond(c, tree, err)
}

func (h *SystemHandler) SaveMenu(c echo.Context) error {
	var p system.SaveMenuParams
	if err := bind(c, &p); err != nil {
		return respond(c, nil, err)
	}
	m, err := h.Svc.SaveMenu(c.Request().Context(), p)
	return respond(c, m, err)
}

func (h *SystemHandler) DeleteMenu(c echo.Context) error {
	return respond(c, struct{}{}, h.Svc.DeleteMenu(c.Request().Context(), c.Param("id")))
}

func (h *SystemHandler) ListUsers(c echo.Context) error {
	page, err := h.Svc.ListUsers(c.Request().Context(), system.UserQuery{
		PageQuery: pageQuery(c),
		UserName:  c.QueryParam("userName"),
		Status:    models.Status(c.QueryParam("status")),
	})
	return respond(c, page, err)
}

func (h *SystemHandler) SaveUser(c echo.Context) error {
	var p system.SaveUserParams
	if err := bind(c, &p); err != nil {
		return respond(c, nil, err)
	}
	u, err := h.Svc.SaveUser(c.Request().Context(), p)
	return respond(c, u, err)
}

func (h *SystemHandler) DeleteUser(c echo.Context) error {
	return respond(c, struct{}{}, h.Svc.DeleteUser(c.Request().Context(), c.Param("id"), callerID(c)))
}

func (h *SystemHandler) ListAnnouncements(c echo.Context) error {
	page, err := h.Svc.ListAnnouncements(c.Request().Context(), system.AnnouncementQuery{
		PageQuery: pageQuery(c),
		Title:     c.QueryParam("title"),
		Type:      c.QueryParam("type"),
	})
	return respond(c, page, err)
}

func (h *SystemHandler) SaveAnnouncement(c echo.Context) error {
	var p system.SaveAnnouncementParams
	if err := bind(c, &p); err != nil {
		return respond(c, nil, err)
	}
	a, err := h.Svc.SaveAnnouncement(c.Request().Context(), callerID(c), p)
	return respond(c, a, err)
}

func (h *SystemHandler) ReadAnnouncement(c echo.Context) error {
	return respond(c, struct{}{}, h.Svc.ReadAnnouncement(c.Request().Context(), c.Param("id")))
}

func (h *SystemHandler) DeleteAnnouncement(c echo.Context) error {
	return respond(c, struct{}{}, h.Svc.DeleteAnnouncement(c.Request().Context(), c.Param("id")))
}

func (h *SystemHandler) ListLogs(c echo.Context) error {
	page, err := h.Svc.ListLogs(c.Request().Context(), system.LogQuery{
		PageQuery: pageQuery(c),
		UserName:  c.QueryParam("userName"),
		Method:    c.QueryParam("method"),
	})
	return respond(c, page, err)
}

func (h *SystemHandler) SearchLogs(c echo.Context) error {
	page, err := h.Svc.SearchLogs(c.Request().Context(), system.LogQuery{
		PageQuery: pageQuery(c),
		Text:      c.QueryParam("q"),
	})
	return respond(c, page, err)
}
