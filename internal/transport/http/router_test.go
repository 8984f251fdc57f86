package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Skotchmaster/admin_console/internal/announce"
	"github.com/Skotchmaster/admin_console/internal/events"
	"github.com/Skotchmaster/admin_console/internal/handlers"
	"github.com/Skotchmaster/admin_console/internal/metrics"
	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/oplog"
	"github.com/Skotchmaster/admin_console/internal/permission"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/service/auth"
	"github.com/Skotchmaster/admin_console/internal/service/system"
	"github.com/Skotchmaster/admin_console/internal/session"
	"github.com/Skotchmaster/admin_console/pkg/db"
	"github.com/Skotchmaster/admin_console/pkg/hash"
	"github.com/Skotchmaster/admin_console/pkg/tokens"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
}

type testServer struct {
	e        *echo.Echo
	repo     *repo.GormRepo
	sessions *session.RedisStore
	sid      string
	token    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))
	r := &repo.GormRepo{DB: gdb}

	sys := &models.Menu{Name: "system", Sort: 1}
	require.NoError(t, r.SaveMenu(ctx, sys))
	roles := &models.Menu{Name: "role-management", ParentID: &sys.ID, Sort: 2}
	require.NoError(t, r.SaveMenu(ctx, roles))
	role := &models.Role{Name: "Admin", Code: "ADMIN"}
	require.NoError(t, r.SaveRole(ctx, role, []models.Permission{
		{MenuID: sys.ID},
		{MenuID: roles.ID, Actions: models.StringList{"add"}},
	}))
	pw, err := hash.HashPassword("s3cret!")
	require.NoError(t, err)
	require.NoError(t, r.SaveUser(ctx, &models.User{UserName: "admin", Password: pw, RoleID: role.ID, Status: models.StatusActive}))

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	store := session.NewRedisStore(rc, time.Hour)

	issuer := tokens.NewIssuer([]byte("test-secret"))
	m := metrics.New(prometheus.NewRegistry())
	svc := auth.NewAuthService(r, issuer, permission.NewBuilder(r), r)
	svc.Metrics = m
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := announce.NewHub(logger)

	e := New(&Deps{
		Logger:   logger,
		Auth:     &handlers.AuthHandler{Svc: svc},
		System:   &handlers.SystemHandler{Svc: &system.SystemService{Repo: r, Hub: hub}},
		Sessions: store,
		Tokens:   issuer,
		Hub:      hub,
		Metrics:  m,
		Recorder: &oplog.Recorder{Store: r, Publisher: events.Nop{}, Timeout: time.Second},
	})
	return &testServer{e: e, repo: r, sessions: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if s.sid != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: s.sid})
	}
	if s.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			s.sid = ck.Value
		}
	}

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) captcha(t *testing.T) string {
	t.Helper()
	rec, _ := s.do(t, http.MethodGet, "/api/v1/auth/captcha", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<svg")

	st, err := s.sessions.Load(context.Background(), s.sid)
	require.NoError(t, err)
	require.NotEmpty(t, st.CaptchaCode)
	return st.CaptchaCode
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	code := s.captcha(t)
	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"userName": "admin", "password": "s3cret!", "captchaCode": code,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, env.Code, env.Message)

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	s.token = res.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_WrongCaptchaIsBusinessFailure(t *testing.T) {
	s := newTestServer(t)
	s.captcha(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"userName": "admin", "password": "s3cret!", "captchaCode": "----",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, env.Code)
	assert.Equal(t, "invalid login", env.Message)
}

func TestLogin_WrongPasswordSharesMessage(t *testing.T) {
	s := newTestServer(t)
	code := s.captcha(t)

	_, env := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"userName": "admin", "password": "nope", "captchaCode": code,
	})
	assert.Equal(t, -1, env.Code)
	assert.Equal(t, "invalid login", env.Message)
}

func TestProtectedRoutes_RequireTokenAndSession(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/auth/user-info", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, -1, env.Code)

	s.login(t)

	// a valid token on a fresh session is not enough
	sid := s.sid
	s.sid = ""
	rec, _ = s.do(t, http.MethodGet, "/api/v1/auth/user-info", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	s.sid = sid
}

func TestLogin_RotatesSessionID(t *testing.T) {
	s := newTestServer(t)
	s.captcha(t)
	before := s.sid

	s.login(t)
	assert.NotEqual(t, before, s.sid)

	_, err := s.sessions.Load(context.Background(), before)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// the token is bound to the new session only
	s.sid = before
	rec, _ := s.do(t, http.MethodGet, "/api/v1/auth/user-info", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUserInfoRoutesLogout(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/auth/user-info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, env.Code)

	var info struct {
		UserName string `json:"userName"`
		Role     struct {
			Permissions []permission.Grant `json:"permissions"`
		} `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "admin", info.UserName)
	require.Len(t, info.Role.Permissions, 3)
	assert.Equal(t, "home", info.Role.Permissions[0].PermissionID)
	assert.Equal(t, "system", info.Role.Permissions[1].PermissionID)
	assert.Equal(t, "role-management", info.Role.Permissions[2].PermissionID)
	assert.NotContains(t, string(env.Data), "password")

	_, env = s.do(t, http.MethodGet, "/api/v1/auth/routes", nil)
	require.Equal(t, 0, env.Code)
	var forest []struct {
		Name     string `json:"name"`
		Children []struct {
			Name string `json:"name"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &forest))
	require.Len(t, forest, 1)
	assert.Equal(t, "system", forest[0].Name)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "role-management", forest[0].Children[0].Name)

	_, env = s.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, 0, env.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/auth/user-info", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	u, err := s.repo.FindUserByName(context.Background(), "admin")
	require.NoError(t, err)
	assert.Nil(t, u.Token)
	assert.Equal(t, 1, u.LoginCount)
}

func TestSystem_ValidationAndOperationLog(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/system/roles", map[string]any{"name": "", "code": ""})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, env.Code)

	_, env = s.do(t, http.MethodPost, "/api/v1/system/announcements", map[string]any{
		"title": "Maintenance", "content": "Tonight at 22:00",
	})
	require.Equal(t, 0, env.Code, env.Message)

	_, env = s.do(t, http.MethodGet, "/api/v1/system/announcements?current=1&pageSize=5", nil)
	require.Equal(t, 0, env.Code)
	var page struct {
		Total int64 `json:"total"`
		Size  int   `json:"size"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 5, page.Size)

	total, logs, err := s.repo.ListOperationLogs(context.Background(), repo.OperationLogFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, l := range logs {
		assert.Equal(t, "admin", l.UserName)
		assert.Equal(t, http.MethodPost, l.Method)
	}

	_, env = s.do(t, http.MethodGet, "/api/v1/system/logs/search?q=admin", nil)
	assert.Equal(t, -1, env.Code)
}

func TestDeleteSelfIsRejected(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	u, err := s.repo.FindUserByName(context.Background(), "admin")
	require.NoError(t, err)

	_, env := s.do(t, http.MethodDelete, "/api/v1/system/users/"+u.ID, nil)
	assert.Equal(t, -1, env.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.captcha(t)

	rec, _ := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/auth/captcha"`)
}
