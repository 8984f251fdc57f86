package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/admin_console/internal/models"
	"gorm.io/gorm"
)

// LoginRecord is the metadata persisted on every successful login.
type LoginRecord struct {
	IP    string
	Token string
	At    time.Time
}

type UserFilter struct {
	UserName string
	Status   models.Status
}

func withUserRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Role").Preload("Organization").Preload("Post")
}

func (r *GormRepo) FindUserByName(ctx context.Context, userName string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("user_name = ?", userName).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := withUserRelations(r.DB.WithContext(ctx)).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// RecordLogin bumps the login counter and stores ip, time and token in one
// transaction, then returns the user with role, organization and post loaded.
func (r *GormRepo) RecordLogin(ctx context.Context, userID string, rec LoginRecord) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"login_count":   gorm.Expr("login_count + ?", 1),
				"last_login_at": rec.At,
				"last_ip":       rec.IP,
				"token":         rec.Token,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return withUserRelations(tx).Where("id = ?", userID).First(&user).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) ClearToken(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("token", nil).Error
}

func (r *GormRepo) ListUsers(ctx context.Context, f UserFilter, offset, limit int) (int64, []models.User, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if f.UserName != "" {
		q = q.Where("user_name LIKE ?", like(f.UserName))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.User
	if err := withUserRelations(q).
		Order("sort ASC").Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SaveUser inserts u when it has no id and updates it otherwise. An empty
// Password on update keeps the stored hash.
func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).
			Where("user_name = ? AND id <> ?", u.UserName, u.ID).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}

		if u.ID == "" {
			return tx.Omit("Role", "Organization", "Post").Create(u).Error
		}

		cols := []string{"user_name", "cn_name", "email", "phone", "avatar_url", "sex", "status", "sort", "tags", "role_id", "org_id", "post_id"}
		if u.Password != "" {
			cols = append(cols, "password")
		}
		res := tx.Model(&models.User{Base: models.Base{ID: u.ID}}).Select(cols).Updates(u)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UpdateUserFields patches the given columns of one user.
func (r *GormRepo) UpdateUserFields(ctx context.Context, id string, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
