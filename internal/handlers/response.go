package handlers

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/admin_console/internal/content"
	"github.com/Skotchmaster/admin_console/internal/service"
	"github.com/Skotchmaster/admin_console/internal/service/auth"
	"github.com/Skotchmaster/admin_console/internal/service/system"
	"github.com/Skotchmaster/admin_console/pkg/logging"
	"github.com/labstack/echo/v4"
)

const (
	CodeOK   = 0
	CodeFail = -1
)

// Envelope wraps every response body.
type Envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

const (
	msgInvalidLogin = "invalid login"
	msgDisabled     = "account disabled"
)

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Data: data, Message: "success", Code: CodeOK})
}

// businessMessage reports whether err is an expected failure the client
// should see in the envelope, and what it should read.
func businessMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, auth.ErrCaptcha), errors.Is(err, auth.ErrCredentials):
		return msgInvalidLogin, true
	case errors.Is(err, auth.ErrUserDisabled):
		return msgDisabled, true
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, system.ErrSearchDisabled),
		errors.Is(err, content.ErrUpstream):
		return err.Error(), true
	}
	return "", false
}

// respond writes data on success. Expected failures are answered with 200
// and code -1; anything else becomes an HTTP error for ErrorHandler.
func respond(c echo.Context, data any, err error) error {
	if err == nil {
		return ok(c, data)
	}
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	if msg, yes := businessMessage(err); yes {
		logging.FromContext(c.Request().Context()).Info("request_rejected", "reason", msg, "error", err)
		return c.JSON(http.StatusOK, Envelope{Message: msg, Code: CodeFail})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
}

// ErrorHandler renders echo errors in the envelope. Internal causes are
// logged, never sent.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if s, isStr := he.Message.(string); isStr {
			msg = s
		} else {
			msg = http.StatusText(status)
		}
		if he.Internal != nil {
			err = he.Internal
		}
	}
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request_failed", "status", status, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, Envelope{Message: msg, Code: CodeFail})
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return service.Validation("malformed request body")
	}
	return nil
}
