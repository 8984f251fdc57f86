package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStringList_SQLiteRoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(All()...))

	menu := Menu{Name: "system"}
	require.NoError(t, db.Create(&menu).Error)
	require.NotEmpty(t, menu.ID)

	role := Role{Name: "admin", Code: "ADMIN"}
	require.NoError(t, db.Create(&role).Error)

	perm := Permission{RoleID: role.ID, MenuID: menu.ID, Actions: StringList{"add", "edit", "with,comma"}}
	require.NoError(t, db.Create(&perm).Error)

	var got Permission
	require.NoError(t, db.First(&got, "id = ?", perm.ID).Error)
	assert.Equal(t, StringList{"add", "edit", "with,comma"}, got.Actions)

	other := Menu{Name: "dashboard"}
	require.NoError(t, db.Create(&other).Error)
	empty := Permission{RoleID: role.ID, MenuID: other.ID}
	require.NoError(t, db.Create(&empty).Error)
	require.NoError(t, db.First(&got, "id = ?", empty.ID).Error)
	assert.Empty(t, got.Actions)
}
