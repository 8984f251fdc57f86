package repo

import (
	"context"

	"github.com/Skotchmaster/admin_console/internal/models"
	"gorm.io/gorm"
)

func orderedMenus(db *gorm.DB) *gorm.DB {
	return db.Order("sort ASC").Order("created_at DESC").Order("id ASC")
}

func (r *GormRepo) MenusByIDs(ctx context.Context, ids []string) ([]models.Menu, error) {
	if len(ids) == 0 {
		return []models.Menu{}, nil
	}
	var menus []models.Menu
	if err := orderedMenus(r.DB.WithContext(ctx)).Where("id IN ?", ids).Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

func (r *GormRepo) AllMenus(ctx context.Context) ([]models.Menu, error) {
	var menus []models.Menu
	if err := orderedMenus(r.DB.WithContext(ctx)).Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

func (r *GormRepo) GetMenu(ctx context.Context, id string) (*models.Menu, error) {
	var menu models.Menu
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&menu).Error; err != nil {
		return nil, notFound(err)
	}
	return &menu, nil
}

// CountMenus reports how many of ids exist.
func (r *GormRepo) CountMenus(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Menu{}).Where("id IN ?", ids).Count(&n).Error
	return n, err
}

func (r *GormRepo) SaveMenu(ctx context.Context, m *models.Menu) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Menu{}).
			Where("name = ? AND id <> ?", m.Name, m.ID).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}

		if m.ID == "" {
			return tx.Create(m).Error
		}
		res := tx.Model(&models.Menu{Base: models.Base{ID: m.ID}}).
			Select("parent_id", "name", "title", "path", "icon", "component", "redirect", "sort", "hide_in_menu").
			Updates(m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteMenu removes a leaf menu together with every role grant on it.
func (r *GormRepo) DeleteMenu(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var children int64
		if err := tx.Model(&models.Menu{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return ErrInUse
		}
		if err := tx.Where("menu_id = ?", id).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Menu{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
