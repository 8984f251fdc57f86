package repo

import (
	"context"

	"github.com/Skotchmaster/admin_console/internal/models"
	"gorm.io/gorm"
)

type RoleFilter struct {
	Name string
	Code string
}

func (r *GormRepo) ListRoles(ctx context.Context, f RoleFilter, offset, limit int) (int64, []models.Role, error) {
	q := r.DB.WithContext(ctx).Model(&models.Role{})
	if f.Name != "" {
		q = q.Where("name LIKE ?", like(f.Name))
	}
	if f.Code != "" {
		q = q.Where("code LIKE ?", like(f.Code))
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Role
	if err := q.Preload("Permissions").
		Order("sort ASC").Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetRole(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Preload("Permissions").Where("id = ?", id).First(&role).Error; err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

// SaveRole upserts the role and replaces its grants with grants in one
// transaction.
func (r *GormRepo) SaveRole(ctx context.Context, role *models.Role, grants []models.Permission) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Role{}).
			Where("code = ? AND id <> ?", role.Code, role.ID).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}

		if role.ID == "" {
			if err := tx.Omit("Permissions").Create(role).Error; err != nil {
				return err
			}
		} else {
			res := tx.Model(&models.Role{Base: models.Base{ID: role.ID}}).
				Select("name", "code", "sort", "description").
				Updates(role)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}

		if err := tx.Where("role_id = ?", role.ID).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		if len(grants) == 0 {
			role.Permissions = nil
			return nil
		}
		for i := range grants {
			grants[i].ID = ""
			grants[i].RoleID = role.ID
			grants[i].Menu = nil
		}
		if err := tx.Create(&grants).Error; err != nil {
			return err
		}
		role.Permissions = grants
		return nil
	})
}

func (r *GormRepo) DeleteRole(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Where("role_id = ?", id).Count(&users).Error; err != nil {
			return err
		}
		if users > 0 {
			return ErrInUse
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Role{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
