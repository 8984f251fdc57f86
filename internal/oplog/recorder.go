package oplog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/admin_console/internal/events"
	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/session"
	"github.com/Skotchmaster/admin_console/pkg/logging"
	"github.com/labstack/echo/v4"
)

const (
	maxParams = 2048
	// maxBody bounds what is buffered for redaction; larger bodies are
	// passed through and logged without params.
	maxBody     = 1 << 20
	bodyOmitted = "<unparsed body omitted>"
)

type Store interface {
	CreateOperationLog(ctx context.Context, entry *models.OperationLog) error
}

type Indexer interface {
	Index(ctx context.Context, entry *models.OperationLog) error
}

// Recorder writes every mutating request of a signed-in user to the
// operation log table, the event stream and the search index.
type Recorder struct {
	Store     Store
	Publisher events.Publisher
	// Indexer may be nil when search is not configured.
	Indexer Indexer
	Timeout time.Duration
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func (r *Recorder) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !mutating(req.Method) {
				return next(c)
			}
			// The handler may end the session (logout), so the actor is
			// taken before it runs.
			sess := session.FromEcho(c)
			if sess == nil || !sess.State.Authenticated() {
				return next(c)
			}
			actor := *sess.State.User

			var params string
			if req.Body != nil {
				raw, err := io.ReadAll(io.LimitReader(req.Body, maxBody+1))
				if err == nil {
					if len(raw) > maxBody {
						params = bodyOmitted
					} else {
						params = redact(raw)
					}
					req.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), req.Body))
				}
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			entry := &models.OperationLog{
				UserID:    actor.ID,
				UserName:  actor.UserName,
				Method:    req.Method,
				Path:      req.URL.Path,
				Action:    c.Path(),
				IP:        c.RealIP(),
				UserAgent: req.UserAgent(),
				Status:    status,
				LatencyMs: time.Since(start).Milliseconds(),
				Params:    params,
			}
			r.Record(req.Context(), entry)
			return err
		}
	}
}

// Record persists entry and fans it out. Failures are logged and never
// reach the caller.
func (r *Recorder) Record(ctx context.Context, entry *models.OperationLog) {
	l := logging.FromContext(ctx).With("component", "oplog")
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := r.Store.CreateOperationLog(ctx, entry); err != nil {
		l.Error("oplog_store_failed", "path", entry.Path, "error", err)
		return
	}
	if r.Publisher != nil {
		if err := r.Publisher.Publish(ctx, events.TopicOperationLogs, entry.UserID, entry); err != nil {
			l.Warn("oplog_publish_failed", "id", entry.ID, "error", err)
		}
	}
	if r.Indexer != nil {
		if err := r.Indexer.Index(ctx, entry); err != nil {
			l.Warn("oplog_index_failed", "id", entry.ID, "error", err)
		}
	}
}

// redact masks password-like fields at any depth and truncates the result.
// Bodies that are not JSON are never stored verbatim.
func redact(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return bodyOmitted
	}
	out, err := json.Marshal(mask(body))
	if err != nil {
		return bodyOmitted
	}
	if len(out) > maxParams {
		out = out[:maxParams]
	}
	return string(out)
}

func mask(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			if strings.Contains(strings.ToLower(k), "password") {
				t[k] = "***"
				continue
			}
			t[k] = mask(inner)
		}
	case []any:
		for i := range t {
			t[i] = mask(t[i])
		}
	}
	return v
}
