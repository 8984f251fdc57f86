package system

import (
	"context"
	"strings"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/service"
	"github.com/Skotchmaster/admin_console/pkg/logging"
)

type RoleQuery struct {
	PageQuery
	Name string
	Code string
}

type MenuGrant struct {
	MenuID  string   `json:"menuId"`
	Actions []string `json:"actions"`
}

type SaveRoleParams struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Sort        int         `json:"sort"`
	Description string      `json:"description"`
	Menus       []MenuGrant `json:"menus"`
}

func (s *SystemService) ListRoles(ctx context.Context, q RoleQuery) (*service.Page[models.Role], error) {
	page, offset, limit := q.bounds()
	total, items, err := s.Repo.ListRoles(ctx, repo.RoleFilter{Name: q.Name, Code: q.Code}, offset, limit)
	if err != nil {
		return nil, err
	}
	return &service.Page[models.Role]{List: items, Total: total, Page: page, Size: limit}, nil
}

func (s *SystemService) SaveRole(ctx context.Context, p SaveRoleParams) (*models.Role, error) {
	l := logging.FromContext(ctx).With("svc", "system.save_role", "code", p.Code)

	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.TrimSpace(p.Code)
	if p.Name == "" || p.Code == "" {
		return nil, service.Validation("role name and code are required")
	}

	grants := make([]models.Permission, 0, len(p.Menus))
	seen := make(map[string]bool, len(p.Menus))
	ids := make([]string, 0, len(p.Menus))
	for _, m := range p.Menus {
		if m.MenuID == "" {
			return nil, service.Validation("menuId is required for every grant")
		}
		if seen[m.MenuID] {
			return nil, service.Validation("menu %s granted twice", m.MenuID)
		}
		seen[m.MenuID] = true
		ids = append(ids, m.MenuID)
		grants = append(grants, models.Permission{MenuID: m.MenuID, Actions: append(models.StringList{}, m.Actions...)})
	}

	n, err := s.Repo.CountMenus(ctx, ids)
	if err != nil {
		return nil, err
	}
	if n != int64(len(ids)) {
		return nil, service.Validation("grants reference unknown menus")
	}

	role := &models.Role{
		Base:        models.Base{ID: p.ID},
		Name:        p.Name,
		Code:        p.Code,
		Sort:        p.Sort,
		Description: p.Description,
	}
	if err := s.Repo.SaveRole(ctx, role, grants); err != nil {
		l.Warn("save_role_failed", "error", err)
		return nil, service.FromRepo(err)
	}
	l.Info("role_saved", "role_id", role.ID, "grants", len(grants))
	return role, nil
}

func (s *SystemService) DeleteRole(ctx context.Context, id string) error {
	if err := s.Repo.DeleteRole(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("delete_role_failed", "role_id", id, "error", err)
		return service.FromRepo(err)
	}
	return nil
}
