package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveLogin(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.ObserveLogin(LoginSuccess)
	m.ObserveLogin(LoginSuccess)
	m.ObserveLogin(LoginBadCaptcha)

	body := scrape(t, m)
	assert.Contains(t, body, `admin_login_attempts_total{outcome="success"} 2`)
	assert.Contains(t, body, `admin_login_attempts_total{outcome="bad_captcha"} 1`)
}

func TestInstrumentUsesRouteTemplate(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	e := echo.New()
	e.Use(m.Instrument())
	e.GET("/roles/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/roles/:id",status="204"} 2`)
}

func TestSetClients(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.SetClients(3)
	assert.Contains(t, scrape(t, m), "announcement_ws_clients 3")
}
