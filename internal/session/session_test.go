package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, time.Hour)
}

func TestRedisStore_SaveLoadDestroy(t *testing.T) {
	mr, store := setupStore(t)
	ctx := context.Background()

	st := State{CaptchaCode: "AB12", User: &UserInfo{ID: "u1", UserName: "admin"}}
	require.NoError(t, store.Save(ctx, "s1", st))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"s1"))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Authenticated())
	assert.Equal(t, "admin", got.User.UserName)
	assert.Equal(t, "AB12", got.CaptchaCode)

	require.NoError(t, store.Destroy(ctx, "s1"))
	require.NoError(t, store.Destroy(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	mr, store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", State{CaptchaCode: "x"}))
	mr.FastForward(2 * time.Hour)

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewUserInfo_Sanitised(t *testing.T) {
	t.Parallel()

	tok := "secret-token"
	u := &models.User{
		Base:     models.Base{ID: "u1"},
		UserName: "admin",
		Password: "$2a$10$hash",
		Token:    &tok,
		Role:     &models.Role{Base: models.Base{ID: "r1"}, Name: "Admin", Code: "ADMIN"},
		Post:     &models.Post{Name: "CTO"},
	}

	info := NewUserInfo(u)
	assert.Equal(t, "u1", info.ID)
	require.NotNil(t, info.Role)
	assert.Equal(t, "ADMIN", info.Role.Code)
	assert.Equal(t, "CTO", info.PostName)

	st := State{User: info}
	assert.True(t, st.Authenticated())
	assert.False(t, State{CaptchaCode: "x"}.Authenticated())
}

func TestMiddleware_NewAndExistingSession(t *testing.T) {
	_, store := setupStore(t)
	e := echo.New()

	var seen *Session
	h := Middleware(store, CookieOptions{})(func(c echo.Context) error {
		seen = FromEcho(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	require.NotNil(t, seen)
	assert.False(t, seen.State.Authenticated())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, seen.ID, cookies[0].Value)

	seen.State.User = &UserInfo{ID: "u1"}
	require.NoError(t, seen.Save(context.Background()))
	firstID := seen.ID

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: firstID})
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, firstID, seen.ID)
	assert.True(t, seen.State.Authenticated())
	assert.Empty(t, rec.Result().Cookies())
}

func TestMiddleware_UnknownCookieStartsFresh(t *testing.T) {
	_, store := setupStore(t)
	e := echo.New()

	var seen *Session
	h := Middleware(store, CookieOptions{})(func(c echo.Context) error {
		seen = FromEcho(c)
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	require.NoError(t, h(e.NewContext(req, httptest.NewRecorder())))
	require.NotNil(t, seen)
	assert.NotEqual(t, "stale", seen.ID)
	assert.False(t, seen.State.Authenticated())
}

func TestSession_DestroyClearsState(t *testing.T) {
	_, store := setupStore(t)
	ctx := context.Background()

	s := New("s1", State{User: &UserInfo{ID: "u1"}, CaptchaCode: "c"}, store)
	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.Destroy(ctx))
	require.NoError(t, s.Destroy(ctx))
	assert.Equal(t, State{}, s.State)
}

func TestSession_Rotate(t *testing.T) {
	_, store := setupStore(t)
	ctx := context.Background()

	s := New("s1", State{CaptchaCode: "c"}, store)
	require.NoError(t, s.Save(ctx))

	require.NoError(t, s.Rotate(ctx))
	assert.NotEqual(t, "s1", s.ID)
	assert.Equal(t, "c", s.State.CaptchaCode)

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx))
	st, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "c", st.CaptchaCode)
}

func TestMiddleware_RotatedSessionGetsNewCookie(t *testing.T) {
	_, store := setupStore(t)
	e := echo.New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "before", State{CaptchaCode: "c"}))

	var rotated string
	h := Middleware(store, CookieOptions{})(func(c echo.Context) error {
		s := FromEcho(c)
		require.NoError(t, s.Rotate(c.Request().Context()))
		require.NoError(t, s.Save(c.Request().Context()))
		rotated = s.ID
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "before"})
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, rotated, cookies[0].Value)
	assert.NotEqual(t, "before", rotated)
}
