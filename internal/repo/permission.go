package repo

import (
	"context"

	"github.com/Skotchmaster/admin_console/internal/models"
)

// PermissionsByRole returns the grants of a role with their menu attached.
// Grants whose menu no longer exists come back with a nil Menu.
func (r *GormRepo) PermissionsByRole(ctx context.Context, roleID string) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.DB.WithContext(ctx).
		Preload("Menu").
		Where("role_id = ?", roleID).
		Order("created_at DESC").Order("id ASC").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}
