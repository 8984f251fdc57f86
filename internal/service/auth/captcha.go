package auth

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/admin_console/internal/captcha"
	"github.com/Skotchmaster/admin_console/internal/session"
)

// Captcha stores a fresh code in the session and returns it drawn as SVG.
func (s *AuthService) Captcha(ctx context.Context, sess *session.Session) (string, error) {
	code, err := captcha.Code()
	if err != nil {
		return "", err
	}
	svg, err := captcha.SVG(code)
	if err != nil {
		return "", err
	}

	sess.State.CaptchaCode = code
	if err := sess.Save(ctx); err != nil {
		return "", fmt.Errorf("save captcha: %w", err)
	}
	return svg, nil
}
