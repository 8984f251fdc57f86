package system

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/service"
	"github.com/Skotchmaster/admin_console/pkg/hash"
	"github.com/Skotchmaster/admin_console/pkg/logging"
)

type UserQuery struct {
	PageQuery
	UserName string
	Status   models.Status
}

type SaveUserParams struct {
	ID        string        `json:"id"`
	UserName  string        `json:"userName"`
	Password  string        `json:"password"`
	CnName    string        `json:"cnName"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	AvatarURL string        `json:"avatarUrl"`
	Sex       string        `json:"sex"`
	Status    models.Status `json:"status"`
	Sort      int           `json:"sort"`
	Tags      []string      `json:"tags"`
	RoleID    string        `json:"roleId"`
	OrgID     *string       `json:"orgId"`
	PostID    *string       `json:"postId"`
}

func (s *SystemService) ListUsers(ctx context.Context, q UserQuery) (*service.Page[models.User], error) {
	page, offset, limit := q.bounds()
	total, items, err := s.Repo.ListUsers(ctx, repo.UserFilter{UserName: q.UserName, Status: q.Status}, offset, limit)
	if err != nil {
		return nil, err
	}
	return &service.Page[models.User]{List: items, Total: total, Page: page, Size: limit}, nil
}

// SaveUser creates or updates a user. The password is required on create
// and replaced on update only when supplied.
func (s *SystemService) SaveUser(ctx context.Context, p SaveUserParams) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "system.save_user", "user_name", p.UserName)

	p.UserName = strings.TrimSpace(p.UserName)
	if p.UserName == "" {
		return nil, service.Validation("userName is required")
	}
	if p.RoleID == "" {
		return nil, service.Validation("roleId is required")
	}
	if p.ID == "" && p.Password == "" {
		return nil, service.Validation("password is required for a new user")
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return nil, service.Validation("email %q is malformed", p.Email)
		}
	}
	switch p.Status {
	case "":
		p.Status = models.StatusActive
	case models.StatusActive, models.StatusInactive:
	default:
		return nil, service.Validation("status must be ACTIVE or INACTIVE")
	}
	if _, err := s.Repo.GetRole(ctx, p.RoleID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, service.Validation("role %s does not exist", p.RoleID)
		}
		return nil, err
	}

	user := &models.User{
		Base:      models.Base{ID: p.ID},
		UserName:  p.UserName,
		CnName:    p.CnName,
		Email:     p.Email,
		Phone:     p.Phone,
		AvatarURL: p.AvatarURL,
		Sex:       p.Sex,
		Status:    p.Status,
		Sort:      p.Sort,
		Tags:      append(models.StringList{}, p.Tags...),
		RoleID:    p.RoleID,
		OrgID:     p.OrgID,
		PostID:    p.PostID,
	}
	if user.Sex == "" {
		user.Sex = "SECRET"
	}
	if p.Password != "" {
		pwHash, err := hash.HashPassword(p.Password)
		if err != nil {
			l.Error("save_user_failed", "status", 500, "reason", "cannot hash the password", "error", err)
			return nil, err
		}
		user.Password = pwHash
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Warn("save_user_failed", "error", err)
		return nil, service.FromRepo(err)
	}
	return user, nil
}

func (s *SystemService) DeleteUser(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return service.Validation("cannot delete the signed-in user")
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return service.FromRepo(err)
	}
	return nil
}
