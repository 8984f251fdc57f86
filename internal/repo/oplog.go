package repo

import (
	"context"

	"github.com/Skotchmaster/admin_console/internal/models"
	"gorm.io/gorm"
)

type OperationLogFilter struct {
	UserName string
	Method   string
}

func (r *GormRepo) CreateOperationLog(ctx context.Context, entry *models.OperationLog) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *GormRepo) ListOperationLogs(ctx context.Context, f OperationLogFilter, offset, limit int) (int64, []models.OperationLog, error) {
	q := r.DB.WithContext(ctx).Model(&models.OperationLog{})
	if f.UserName != "" {
		q = q.Where("user_name LIKE ?", like(f.UserName))
	}
	if f.Method != "" {
		q = q.Where("method = ?", f.Method)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.OperationLog
	if err := q.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
