package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// RoleInfo is the role detail kept next to the session user.
type RoleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// UserInfo is the user snapshot bound to a session. It never carries the
// password hash or the token.
type UserInfo struct {
	ID               string            `json:"id"`
	UserName         string            `json:"userName"`
	CnName           string            `json:"cnName"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	AvatarURL        string            `json:"avatarUrl"`
	Sex              string            `json:"sex"`
	Status           models.Status     `json:"status"`
	Tags             models.StringList `json:"tags"`
	RoleID           string            `json:"roleId"`
	OrgID            *string           `json:"orgId"`
	PostID           *string           `json:"postId"`
	OrganizationName string            `json:"organizationName,omitempty"`
	PostName         string            `json:"postName,omitempty"`
	LoginCount       int               `json:"loginCount"`
	LastLoginAt      *time.Time        `json:"lastLoginAt"`
	LastIP           string            `json:"lastIp"`
	Role             *RoleInfo         `json:"role,omitempty"`
}

func NewUserInfo(u *models.User) *UserInfo {
	info := &UserInfo{
		ID:          u.ID,
		UserName:    u.UserName,
		CnName:      u.CnName,
		Email:       u.Email,
		Phone:       u.Phone,
		AvatarURL:   u.AvatarURL,
		Sex:         u.Sex,
		Status:      u.Status,
		Tags:        append(models.StringList{}, u.Tags...),
		RoleID:      u.RoleID,
		OrgID:       u.OrgID,
		PostID:      u.PostID,
		LoginCount:  u.LoginCount,
		LastLoginAt: u.LastLoginAt,
		LastIP:      u.LastIP,
	}
	if u.Role != nil {
		info.Role = &RoleInfo{
			ID:          u.Role.ID,
			Name:        u.Role.Name,
			Code:        u.Role.Code,
			Description: u.Role.Description,
		}
	}
	if u.Organization != nil {
		info.OrganizationName = u.Organization.Name
	}
	if u.Post != nil {
		info.PostName = u.Post.Name
	}
	return info
}

// State is Anonymous while User is nil and Authenticated otherwise.
type State struct {
	CaptchaCode string    `json:"captchaCode,omitempty"`
	User        *UserInfo `json:"user,omitempty"`
}

func (s State) Authenticated() bool {
	return s.User != nil
}

type Store interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, st State) error
	Destroy(ctx context.Context, id string) error
}

// Session is the per-request handle on one stored state.
type Session struct {
	ID    string
	State State

	store Store
}

func New(id string, st State, store Store) *Session {
	return &Session{ID: id, State: st, store: store}
}

func (s *Session) Save(ctx context.Context) error {
	return s.store.Save(ctx, s.ID, s.State)
}

// Rotate moves the session to a fresh id and drops the old key. The state
// is kept in memory; call Save to store it under the new id.
func (s *Session) Rotate(ctx context.Context) error {
	old := s.ID
	s.ID = uuid.NewString()
	if err := s.store.Destroy(ctx, old); err != nil {
		return fmt.Errorf("drop session %s: %w", old, err)
	}
	return nil
}

// Destroy clears the state and removes it from the store. Destroying twice
// is not an error.
func (s *Session) Destroy(ctx context.Context) error {
	s.State = State{}
	return s.store.Destroy(ctx, s.ID)
}
