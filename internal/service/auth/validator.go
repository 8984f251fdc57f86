package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/pkg/hash"
)

var (
	ErrCaptcha          = errors.New("captcha mismatch")
	ErrCredentials      = errors.New("invalid credentials")
	ErrUserDisabled     = errors.New("user disabled")
	ErrNotAuthenticated = errors.New("not authenticated")
)

type UserFinder interface {
	FindUserByName(ctx context.Context, userName string) (*models.User, error)
}

// Validator decides whether a login attempt may proceed.
type Validator struct {
	Users UserFinder
}

// Validate checks the captcha before anything else, so a wrong captcha never
// reaches the user store.
func (v *Validator) Validate(ctx context.Context, loginName, password, suppliedCaptcha, sessionCaptcha string) (*models.User, error) {
	if sessionCaptcha == "" || !strings.EqualFold(suppliedCaptcha, sessionCaptcha) {
		return nil, ErrCaptcha
	}

	user, err := v.Users.FindUserByName(ctx, loginName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := hash.CheckPassword(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, ErrCredentials
	}

	if user.Status == models.StatusInactive {
		return nil, ErrUserDisabled
	}
	return user, nil
}
