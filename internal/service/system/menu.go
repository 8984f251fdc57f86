package system

import (
	"context"
	"strings"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/permission"
	"github.com/Skotchmaster/admin_console/internal/service"
	"github.com/Skotchmaster/admin_console/pkg/logging"
)

type SaveMenuParams struct {
	ID         string  `json:"id"`
	ParentID   *string `json:"parentId"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Path       string  `json:"path"`
	Icon       string  `json:"icon"`
	Component  string  `json:"component"`
	Redirect   string  `json:"redirect"`
	Sort       int     `json:"sort"`
	HideInMenu bool    `json:"hideInMenu"`
}

// MenuTree returns every menu nested by parent.
func (s *SystemService) MenuTree(ctx context.Context) ([]*permission.MenuNode, error) {
	all, err := s.Repo.AllMenus(ctx)
	if err != nil {
		return nil, err
	}
	return permission.BuildForest(all)
}

func (s *SystemService) SaveMenu(ctx context.Context, p SaveMenuParams) (*models.Menu, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, service.Validation("menu name is required")
	}
	if p.ParentID != nil && *p.ParentID == "" {
		p.ParentID = nil
	}

	if p.ParentID != nil {
		all, err := s.Repo.AllMenus(ctx)
		if err != nil {
			return nil, err
		}
		found := false
		for _, m := range all {
			if m.ID == *p.ParentID {
				found = true
				break
			}
		}
		if !found {
			return nil, service.Validation("parent menu %s does not exist", *p.ParentID)
		}
		if p.ID != "" && permission.WouldCycle(all, p.ID, *p.ParentID) {
			return nil, service.Validation("menu %s cannot be placed under its own descendant", p.ID)
		}
	}

	menu := &models.Menu{
		Base:       models.Base{ID: p.ID},
		ParentID:   p.ParentID,
		Name:       p.Name,
		Title:      p.Title,
		Path:       p.Path,
		Icon:       p.Icon,
		Component:  p.Component,
		Redirect:   p.Redirect,
		Sort:       p.Sort,
		HideInMenu: p.HideInMenu,
	}
	if err := s.Repo.SaveMenu(ctx, menu); err != nil {
		logging.FromContext(ctx).Warn("save_menu_failed", "name", p.Name, "error", err)
		return nil, service.FromRepo(err)
	}
	return menu, nil
}

// DeleteMenu refuses menus that still have children and drops every grant
// on the deleted one.
func (s *SystemService) DeleteMenu(ctx context.Context, id string) error {
	if err := s.Repo.DeleteMenu(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("delete_menu_failed", "menu_id", id, "error", err)
		return service.FromRepo(err)
	}
	return nil
}
