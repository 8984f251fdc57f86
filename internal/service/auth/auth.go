package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/admin_console/internal/metrics"
	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/permission"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/service"
	"github.com/Skotchmaster/admin_console/internal/session"
	"github.com/Skotchmaster/admin_console/pkg/logging"
	"github.com/Skotchmaster/admin_console/pkg/tokens"
)

type UserStore interface {
	UserFinder
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	RecordLogin(ctx context.Context, userID string, rec repo.LoginRecord) (*models.User, error)
	ClearToken(ctx context.Context, userID string) error
	UpdateUserFields(ctx context.Context, id string, fields map[string]any) error
}

type TokenIssuer interface {
	Issue(c tokens.Claims) (string, error)
}

type LocaleStore interface {
	AllInternationalization(ctx context.Context) ([]models.Internationalization, error)
}

type LoginObserver interface {
	ObserveLogin(outcome string)
}

type AuthService struct {
	Users  UserStore
	Tokens TokenIssuer
	Perms  *permission.Builder
	I18n   LocaleStore
	// Metrics may be nil.
	Metrics LoginObserver
	Now     func() time.Time

	binder Binder
}

func NewAuthService(users UserStore, issuer TokenIssuer, perms *permission.Builder, locales LocaleStore) *AuthService {
	return &AuthService{
		Users:  users,
		Tokens: issuer,
		Perms:  perms,
		I18n:   locales,
		Now:    time.Now,
	}
}

type LoginParams struct {
	UserName    string `json:"userName"`
	Password    string `json:"password"`
	CaptchaCode string `json:"captchaCode"`
}

type LoginResult struct {
	Token string `json:"token"`
}

type RoleView struct {
	Permissions []permission.Grant `json:"permissions"`
}

// UserView is the session user as the client expects it: role detail under
// roleInfo and the flattened grants under role.permissions.
type UserView struct {
	session.UserInfo
	RoleInfo *session.RoleInfo `json:"roleInfo"`
	Role     RoleView          `json:"role"`
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) observe(outcome string) {
	if s.Metrics != nil {
		s.Metrics.ObserveLogin(outcome)
	}
}

func (s *AuthService) Login(ctx context.Context, p LoginParams, sess *session.Session, clientIP string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "user_name", p.UserName)

	if p.UserName == "" || p.Password == "" || p.CaptchaCode == "" {
		return nil, service.Validation("userName, password and captchaCode are required")
	}

	v := Validator{Users: s.Users}
	user, err := v.Validate(ctx, p.UserName, p.Password, p.CaptchaCode, sess.State.CaptchaCode)
	if err != nil {
		// A captcha is good for one attempt.
		sess.State.CaptchaCode = ""
		if serr := sess.Save(ctx); serr != nil {
			l.Warn("captcha_reset_failed", "error", serr)
		}
		switch {
		case errors.Is(err, ErrCaptcha):
			s.observe(metrics.LoginBadCaptcha)
			l.Warn("login_failed", "status", 401, "reason", "captcha mismatch")
		case errors.Is(err, ErrCredentials):
			s.observe(metrics.LoginBadPassword)
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		case errors.Is(err, ErrUserDisabled):
			s.observe(metrics.LoginDisabled)
			l.Warn("login_failed", "status", 403, "reason", "user disabled")
		default:
			s.observe(metrics.LoginError)
			l.Error("login_failed", "status", 500, "error", err)
		}
		return nil, err
	}

	token, err := s.Tokens.Issue(tokens.Claims{SubjectID: user.ID, UserName: user.UserName})
	if err != nil {
		s.observe(metrics.LoginError)
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	// Overwriting the stored token does not revoke one handed out by a
	// concurrent login of the same user; both stay valid until expiry.
	updated, err := s.Users.RecordLogin(ctx, user.ID, repo.LoginRecord{IP: clientIP, Token: token, At: s.now()})
	if err != nil {
		s.observe(metrics.LoginError)
		l.Error("login_failed", "status", 500, "reason", "cannot record login", "error", err)
		return nil, fmt.Errorf("record login: %w", err)
	}

	if err := s.binder.BindOnLogin(ctx, sess, updated); err != nil {
		s.observe(metrics.LoginError)
		l.Error("login_failed", "status", 500, "reason", "cannot bind session", "error", err)
		return nil, fmt.Errorf("bind session: %w", err)
	}

	s.observe(metrics.LoginSuccess)
	l.Info("login_successful", "user_id", updated.ID)
	return &LoginResult{Token: token}, nil
}

// Logout clears the stored token and then the session. Logging out an
// anonymous session only destroys it.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if sess.State.Authenticated() {
		userID := sess.State.User.ID
		if err := s.Users.ClearToken(ctx, userID); err != nil {
			l.Error("logout_failed", "status", 500, "reason", "cannot clear token", "user_id", userID, "error", err)
			return fmt.Errorf("clear token: %w", err)
		}
		l.Info("logout_successful", "user_id", userID)
	}

	if err := s.binder.Unbind(ctx, sess); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot destroy session", "error", err)
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, sess *session.Session) (*UserView, error) {
	if !sess.State.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	user := sess.State.User

	grants, err := s.Perms.FlattenedPermissions(ctx, user.RoleID)
	if err != nil {
		logging.FromContext(ctx).Error("user_info_failed", "status", 500, "user_id", user.ID, "error", err)
		return nil, err
	}

	return &UserView{
		UserInfo: *user,
		RoleInfo: user.Role,
		Role:     RoleView{Permissions: grants},
	}, nil
}

func (s *AuthService) DynamicRoutes(ctx context.Context, sess *session.Session) ([]*permission.MenuNode, error) {
	if !sess.State.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	forest, err := s.Perms.RoleForest(ctx, sess.State.User.RoleID)
	if err != nil {
		logging.FromContext(ctx).Error("routes_failed", "status", 500, "role_id", sess.State.User.RoleID, "error", err)
		return nil, err
	}
	return forest, nil
}
