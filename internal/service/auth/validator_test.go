package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenFinder struct{}

func (brokenFinder) FindUserByName(context.Context, string) (*models.User, error) {
	return nil, errors.New("connection reset")
}

func TestValidator_StoreErrorIsNotCredentials(t *testing.T) {
	t.Parallel()

	v := Validator{Users: brokenFinder{}}
	_, err := v.Validate(context.Background(), "admin", "pw", "abcd", "ABCD")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentials)
}

func TestValidator_MalformedHash(t *testing.T) {
	t.Parallel()

	users := newFakeUsers(&models.User{Base: models.Base{ID: "u"}, UserName: "u", Password: "not-bcrypt"})
	v := Validator{Users: users}
	_, err := v.Validate(context.Background(), "u", "pw", "x", "X")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentials)
}

func TestValidator_CaseInsensitiveCaptcha(t *testing.T) {
	t.Parallel()

	u := adminUser(t)
	v := Validator{Users: newFakeUsers(u)}
	got, err := v.Validate(context.Background(), "admin", testPassword, "xY7k", "XY7K")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}
