package repo

import (
	"context"

	"github.com/Skotchmaster/admin_console/internal/models"
)

func (r *GormRepo) AllInternationalization(ctx context.Context) ([]models.Internationalization, error) {
	var rows []models.Internationalization
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
