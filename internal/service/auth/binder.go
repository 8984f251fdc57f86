package auth

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/session"
)

type Binder struct{}

// BindOnLogin moves the session to a new id, stores the sanitised user in
// it and consumes the captcha.
func (Binder) BindOnLogin(ctx context.Context, sess *session.Session, user *models.User) error {
	if err := sess.Rotate(ctx); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	sess.State = session.State{User: session.NewUserInfo(user)}
	return sess.Save(ctx)
}

func (Binder) Unbind(ctx context.Context, sess *session.Session) error {
	return sess.Destroy(ctx)
}
