package authmw

import (
	"net/http"
	"strings"

	"github.com/Skotchmaster/admin_console/internal/session"
	"github.com/Skotchmaster/admin_console/pkg/logging"
	loggingmw "github.com/Skotchmaster/admin_console/pkg/middleware/logging"
	"github.com/Skotchmaster/admin_console/pkg/tokens"
	"github.com/labstack/echo/v4"
)

type TokenVerifier interface {
	Verify(raw string) (*tokens.Claims, error)
}

func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth admits a request only when it carries a valid bearer token and
// its session is signed in as the token's subject.
func RequireAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context())

			raw := bearer(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			claims, err := v.Verify(raw)
			if err != nil {
				l.Warn("auth_rejected", "status", 401, "reason", "invalid token", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sess := session.FromEcho(c)
			if sess == nil || !sess.State.Authenticated() {
				l.Warn("auth_rejected", "status", 401, "reason", "session not signed in", "sub", claims.SubjectID)
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}
			if sess.State.User.ID != claims.SubjectID {
				l.Warn("auth_rejected", "status", 401, "reason", "token does not match session", "sub", claims.SubjectID)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(loggingmw.CtxUserID, claims.SubjectID)
			return next(c)
		}
	}
}
