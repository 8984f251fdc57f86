package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/service"
	"github.com/Skotchmaster/admin_console/internal/session"
	"github.com/Skotchmaster/admin_console/pkg/hash"
	"github.com/Skotchmaster/admin_console/pkg/logging"
)

type ProfileParams struct {
	CnName string `json:"cnName"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Sex    string `json:"sex"`
}

type PasswordParams struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

const minPasswordLen = 6

// UpdateProfile edits the caller's own contact fields.
func (s *AuthService) UpdateProfile(ctx context.Context, sess *session.Session, p ProfileParams) (*session.UserInfo, error) {
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return nil, service.Validation("email %q is malformed", p.Email)
		}
	}
	switch p.Sex {
	case "", "MALE", "FEMALE", "SECRET":
	default:
		return nil, service.Validation("sex must be MALE, FEMALE or SECRET")
	}
	fields := map[string]any{
		"cn_name": strings.TrimSpace(p.CnName),
		"email":   p.Email,
		"phone":   p.Phone,
	}
	if p.Sex != "" {
		fields["sex"] = p.Sex
	}
	return s.patchSelf(ctx, sess, "update_profile", fields)
}

func (s *AuthService) ChangeTags(ctx context.Context, sess *session.Session, tags []string) (*session.UserInfo, error) {
	clean := models.StringList{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		clean = append(clean, t)
	}
	return s.patchSelf(ctx, sess, "change_tags", map[string]any{"tags": clean})
}

func (s *AuthService) ChangeAvatar(ctx context.Context, sess *session.Session, url string) (*session.UserInfo, error) {
	if strings.TrimSpace(url) == "" {
		return nil, service.Validation("avatarUrl is required")
	}
	return s.patchSelf(ctx, sess, "change_avatar", map[string]any{"avatar_url": url})
}

// ChangePassword verifies the current password before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, sess *session.Session, p PasswordParams) error {
	if !sess.State.Authenticated() {
		return ErrNotAuthenticated
	}
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", sess.State.User.ID)

	if len(p.NewPassword) < minPasswordLen {
		return service.Validation("new password must be at least %d characters", minPasswordLen)
	}

	user, err := s.Users.GetUserByID(ctx, sess.State.User.ID)
	if err != nil {
		return service.FromRepo(err)
	}
	ok, err := hash.CheckPassword(p.OldPassword, user.Password)
	if err != nil {
		return fmt.Errorf("check password: %w", err)
	}
	if !ok {
		l.Warn("change_password_failed", "status", 400, "reason", "old password mismatch")
		return ErrCredentials
	}

	pwHash, err := hash.HashPassword(p.NewPassword)
	if err != nil {
		l.Error("change_password_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return err
	}
	if err := s.Users.UpdateUserFields(ctx, user.ID, map[string]any{"password": pwHash}); err != nil {
		return service.FromRepo(err)
	}
	l.Info("change_password_successful")
	return nil
}

// patchSelf writes fields to the session user and refreshes the session copy.
func (s *AuthService) patchSelf(ctx context.Context, sess *session.Session, op string, fields map[string]any) (*session.UserInfo, error) {
	if !sess.State.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	userID := sess.State.User.ID
	l := logging.FromContext(ctx).With("svc", "auth."+op, "user_id", userID)

	if err := s.Users.UpdateUserFields(ctx, userID, fields); err != nil {
		l.Warn(op+"_failed", "error", err)
		return nil, service.FromRepo(err)
	}
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, service.FromRepo(err)
	}

	sess.State.User = session.NewUserInfo(user)
	if err := sess.Save(ctx); err != nil {
		l.Error(op+"_failed", "status", 500, "reason", "cannot refresh session", "error", err)
		return nil, err
	}
	return sess.State.User, nil
}
