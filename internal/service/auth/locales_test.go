package auth

import (
	"context"
	"testing"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLocales(t *testing.T) {
	t.Parallel()

	rows := []models.Internationalization{
		{Base: models.Base{ID: "1"}, Name: "menu"},
		{Base: models.Base{ID: "2"}, ParentID: ptr("1"), Name: "system", ZhCN: "系统设置", EnUS: "System", JaJP: "システム", ZhTW: "系統設置"},
		{Base: models.Base{ID: "3"}, ParentID: ptr("1"), Name: "user", EnUS: "User"},
		{Base: models.Base{ID: "4"}, Name: "title", EnUS: "Console"},
		{Base: models.Base{ID: "5"}, ParentID: ptr("6"), Name: "loop"},
		{Base: models.Base{ID: "6"}, ParentID: ptr("5"), Name: "loop2"},
	}

	out := BuildLocales(context.Background(), rows)
	require.Len(t, out, 4)

	assert.Equal(t, map[string]any{
		"menu":  map[string]any{"system": "System", "user": "User"},
		"title": "Console",
	}, out["en-US"])
	assert.Equal(t, "系统设置", out["zh-CN"]["menu"].(map[string]any)["system"])
	assert.Equal(t, "", out["ja-JP"]["menu"].(map[string]any)["user"])
}

func TestLocalesLoadsFromStore(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.svc.I18n = fakeLocales{rows: []models.Internationalization{{Base: models.Base{ID: "1"}, Name: "ok", ZhTW: "好"}}}

	out, err := h.svc.Locales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "好", out["zh-TW"]["ok"])
}
