package permission

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/pkg/logging"
)

// HomeID is the landing page every authenticated role can open.
const HomeID = "home"

var ErrMenuCycle = errors.New("menu hierarchy contains a cycle")

type Store interface {
	PermissionsByRole(ctx context.Context, roleID string) ([]models.Permission, error)
	MenusByIDs(ctx context.Context, ids []string) ([]models.Menu, error)
}

type Grant struct {
	PermissionID string   `json:"permissionId"`
	Actions      []string `json:"actions"`
}

type MenuNode struct {
	models.Menu
	Children []*MenuNode `json:"children,omitempty"`
}

type Builder struct {
	Store Store
}

func NewBuilder(store Store) *Builder {
	return &Builder{Store: store}
}

// FlattenedPermissions lists the grants of a role keyed by menu name. The
// home grant is always first and appears once.
func (b *Builder) FlattenedPermissions(ctx context.Context, roleID string) ([]Grant, error) {
	home := Grant{PermissionID: HomeID, Actions: []string{}}
	if roleID == "" {
		return []Grant{home}, nil
	}

	perms, err := b.Store.PermissionsByRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("load permissions of role %s: %w", roleID, err)
	}

	granted := make([]models.Permission, 0, len(perms))
	for _, p := range perms {
		if p.Menu == nil {
			logging.FromContext(ctx).Warn("permission_dangling", "role_id", roleID, "menu_id", p.MenuID)
			continue
		}
		granted = append(granted, p)
	}
	sort.SliceStable(granted, func(i, j int) bool {
		return menuLess(granted[i].Menu, granted[j].Menu)
	})

	out := make([]Grant, 1, len(granted)+1)
	for _, p := range granted {
		actions := append([]string{}, p.Actions...)
		if p.Menu.Name == HomeID {
			home.Actions = actions
			continue
		}
		out = append(out, Grant{PermissionID: p.Menu.Name, Actions: actions})
	}
	out[0] = home
	return out, nil
}

// MenuForest loads the given menus and nests them by parent.
func (b *Builder) MenuForest(ctx context.Context, menuIDs []string) ([]*MenuNode, error) {
	if len(menuIDs) == 0 {
		return []*MenuNode{}, nil
	}
	rows, err := b.Store.MenusByIDs(ctx, menuIDs)
	if err != nil {
		return nil, fmt.Errorf("load menus: %w", err)
	}
	return BuildForest(rows)
}

// RoleForest is the menu forest reachable through the grants of roleID.
func (b *Builder) RoleForest(ctx context.Context, roleID string) ([]*MenuNode, error) {
	if roleID == "" {
		return []*MenuNode{}, nil
	}
	perms, err := b.Store.PermissionsByRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("load permissions of role %s: %w", roleID, err)
	}
	ids := make([]string, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.MenuID)
	}
	return b.MenuForest(ctx, ids)
}

func menuLess(a, b *models.Menu) bool {
	if a.Sort != b.Sort {
		return a.Sort < b.Sort
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// BuildForest nests rows by ParentID. Siblings are ordered by sort ascending,
// newest first on equal sort, then by id. A row whose parent is not in rows
// becomes a root. Rows that can never reach a root form a cycle and are
// reported through ErrMenuCycle.
func BuildForest(rows []models.Menu) ([]*MenuNode, error) {
	sorted := append([]models.Menu(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return menuLess(&sorted[i], &sorted[j])
	})

	nodes := make([]*MenuNode, 0, len(sorted))
	index := make(map[string]int, len(sorted))
	for _, m := range sorted {
		if _, dup := index[m.ID]; dup {
			continue
		}
		index[m.ID] = len(nodes)
		nodes = append(nodes, &MenuNode{Menu: m})
	}

	roots := []*MenuNode{}
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := index[*n.ParentID]
		if !ok {
			roots = append(roots, n)
			continue
		}
		nodes[parent].Children = append(nodes[parent].Children, n)
	}

	reached := make(map[string]bool, len(nodes))
	stack := append([]*MenuNode(nil), roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached[n.ID] = true
		stack = append(stack, n.Children...)
	}

	if len(reached) != len(nodes) {
		var stuck []string
		for _, n := range nodes {
			if !reached[n.ID] {
				stuck = append(stuck, n.ID)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: %s", ErrMenuCycle, strings.Join(stuck, ", "))
	}
	return roots, nil
}

// WouldCycle reports whether making parentID the parent of id would close a
// cycle, given every menu currently stored.
func WouldCycle(all []models.Menu, id, parentID string) bool {
	parents := make(map[string]string, len(all))
	for _, m := range all {
		if m.ParentID != nil {
			parents[m.ID] = *m.ParentID
		}
	}
	seen := map[string]bool{}
	for cur := parentID; cur != ""; cur = parents[cur] {
		if cur == id || seen[cur] {
			return true
		}
		seen[cur] = true
	}
	return false
}
