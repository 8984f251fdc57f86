package repo

import (
	"context"

	"github.com/Skotchmaster/admin_console/internal/models"
	"gorm.io/gorm"
)

type AnnouncementFilter struct {
	Title string
	Type  string
}

func (r *GormRepo) ListAnnouncements(ctx context.Context, f AnnouncementFilter, offset, limit int) (int64, []models.Announcement, error) {
	q := r.DB.WithContext(ctx).Model(&models.Announcement{})
	if f.Title != "" {
		q = q.Where("title LIKE ?", like(f.Title))
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Announcement
	if err := q.Order("pinned DESC").Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) SaveAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a.ID == "" {
		return r.DB.WithContext(ctx).Create(a).Error
	}
	res := r.DB.WithContext(ctx).Model(&models.Announcement{Base: models.Base{ID: a.ID}}).
		Select("title", "content", "type", "status", "pinned").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAnnouncementRead bumps the read counter.
func (r *GormRepo) MarkAnnouncementRead(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&models.Announcement{}).
		Where("id = ?", id).
		Update("read_counts", gorm.Expr("read_counts + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteAnnouncement(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Announcement{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
