package session

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/admin_console/pkg/logging"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "sid"
	ctxKey     = "session"
)

type CookieOptions struct {
	Secure bool
	MaxAge int
}

// Middleware attaches a session to every request, starting a new anonymous
// one when the cookie is missing or no longer known to the store. A session
// whose id changes while the request runs gets a fresh cookie.
func Middleware(store Store, opts CookieOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var sess *Session
			if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
				st, err := store.Load(ctx, ck.Value)
				switch {
				case err == nil:
					sess = New(ck.Value, st, store)
				case !errors.Is(err, ErrNotFound):
					logging.FromContext(ctx).Error("session_load_failed", "status", 500, "error", err)
					return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
				}
			}
			if sess == nil {
				sess = New(uuid.NewString(), State{}, store)
				setCookie(c, sess.ID, opts)
			}

			issued := sess.ID
			c.Response().Before(func() {
				if sess.ID != issued {
					setCookie(c, sess.ID, opts)
				}
			})

			IntoEcho(c, sess)
			return next(c)
		}
	}
}

func setCookie(c echo.Context, id string, opts CookieOptions) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   opts.MaxAge,
	})
}

// FromEcho returns the request session. It is nil when Middleware is not
// installed.
func FromEcho(c echo.Context) *Session {
	s, _ := c.Get(ctxKey).(*Session)
	return s
}

func IntoEcho(c echo.Context, s *Session) {
	c.Set(ctxKey, s)
}
