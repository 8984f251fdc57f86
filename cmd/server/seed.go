package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/service/system"
	"github.com/Skotchmaster/admin_console/pkg/logging"
	"github.com/spf13/cobra"
)

const (
	adminRoleCode = "ADMIN"
	adminUserName = "admin"
)

// defaultMenus is the console skeleton seeded into an empty database.
var defaultMenus = []struct {
	name, parent, title, path, icon string
	sort                            int
}{
	{name: "system", title: "menu.system", path: "/system", icon: "SettingOutlined", sort: 10},
	{name: "role-management", parent: "system", title: "menu.system.role-management", path: "/system/role-management", sort: 1},
	{name: "menu-management", parent: "system", title: "menu.system.menu-management", path: "/system/menu-management", sort: 2},
	{name: "user-management", parent: "system", title: "menu.system.user-management", path: "/system/user-management", sort: 3},
	{name: "announcement", parent: "system", title: "menu.system.announcement", path: "/system/announcement", sort: 4},
	{name: "operation-log", parent: "system", title: "menu.system.operation-log", path: "/system/operation-log", sort: 5},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default menus, the admin role and the admin user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		if cfg.AdminPassword == "" {
			return errors.New("ADMIN_PASSWORD is required for seeding")
		}

		ctx := logging.IntoContext(cmd.Context(), logger)
		gdb, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB(gdb, logger)

		if err := migrate(gdb); err != nil {
			return err
		}
		svc := &system.SystemService{Repo: &repo.GormRepo{DB: gdb}}
		return seed(ctx, svc, cfg.AdminPassword)
	},
}

// seed is safe to run repeatedly: existing menus and the admin user are
// kept, and the admin role is re-granted every menu.
func seed(ctx context.Context, svc *system.SystemService, adminPassword string) error {
	l := logging.FromContext(ctx).With("cmd", "seed")

	menus, err := svc.Repo.AllMenus(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]string, len(menus))
	for _, m := range menus {
		byName[m.Name] = m.ID
	}
	for _, d := range defaultMenus {
		if _, ok := byName[d.name]; ok {
			continue
		}
		p := system.SaveMenuParams{Name: d.name, Title: d.title, Path: d.path, Icon: d.icon, Sort: d.sort}
		if d.parent != "" {
			parentID := byName[d.parent]
			p.ParentID = &parentID
		}
		m, err := svc.SaveMenu(ctx, p)
		if err != nil {
			return fmt.Errorf("seed menu %s: %w", d.name, err)
		}
		byName[m.Name] = m.ID
		l.Info("menu_seeded", "name", m.Name)
	}

	if menus, err = svc.Repo.AllMenus(ctx); err != nil {
		return err
	}
	params := system.SaveRoleParams{Name: "Administrator", Code: adminRoleCode, Description: "Full access"}
	for _, m := range menus {
		params.Menus = append(params.Menus, system.MenuGrant{MenuID: m.ID, Actions: []string{"add", "edit", "delete"}})
	}
	_, roles, err := svc.Repo.ListRoles(ctx, repo.RoleFilter{Code: adminRoleCode}, 0, 100)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r.Code == adminRoleCode {
			params.ID = r.ID
		}
	}
	role, err := svc.SaveRole(ctx, params)
	if err != nil {
		return fmt.Errorf("seed role: %w", err)
	}
	l.Info("role_seeded", "role_id", role.ID, "grants", len(params.Menus))

	_, err = svc.Repo.FindUserByName(ctx, adminUserName)
	switch {
	case err == nil:
		l.Info("admin_exists", "user_name", adminUserName)
		return nil
	case !errors.Is(err, repo.ErrNotFound):
		return err
	}
	u, err := svc.SaveUser(ctx, system.SaveUserParams{
		UserName: adminUserName,
		Password: adminPassword,
		CnName:   "Administrator",
		RoleID:   role.ID,
		Status:   models.StatusActive,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	l.Info("admin_seeded", "user_id", u.ID)
	return nil
}
