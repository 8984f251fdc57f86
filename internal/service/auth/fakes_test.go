package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/session"
	"github.com/Skotchmaster/admin_console/pkg/tokens"
)

type fakeUsers struct {
	mu      sync.Mutex
	byName  map[string]*models.User
	lookups int
	writes  int

	recordErr error
	clearErr  error
	records   []repo.LoginRecord
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byName: map[string]*models.User{}}
	for _, u := range users {
		f.byName[u.UserName] = u
	}
	return f
}

func (f *fakeUsers) byID(id string) *models.User {
	for _, u := range f.byName {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) FindUserByName(_ context.Context, name string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	u, ok := f.byName[name]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byID(id)
	if u == nil {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) RecordLogin(_ context.Context, id string, rec repo.LoginRecord) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	u := f.byID(id)
	if u == nil {
		return nil, repo.ErrNotFound
	}
	f.records = append(f.records, rec)
	u.LoginCount++
	u.LastIP = rec.IP
	at := rec.At
	u.LastLoginAt = &at
	tok := rec.Token
	u.Token = &tok
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ClearToken(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.clearErr != nil {
		return f.clearErr
	}
	if u := f.byID(id); u != nil {
		u.Token = nil
	}
	return nil
}

func (f *fakeUsers) UpdateUserFields(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	u := f.byID(id)
	if u == nil {
		return repo.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "password":
			u.Password = v.(string)
		case "cn_name":
			u.CnName = v.(string)
		case "email":
			u.Email = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "sex":
			u.Sex = v.(string)
		case "avatar_url":
			u.AvatarURL = v.(string)
		case "tags":
			u.Tags = v.(models.StringList)
		}
	}
	return nil
}

type memSessions struct {
	mu      sync.Mutex
	data    map[string]session.State
	saveErr error
}

func newMemSessions() *memSessions {
	return &memSessions{data: map[string]session.State{}}
}

func (m *memSessions) Load(_ context.Context, id string) (session.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.data[id]
	if !ok {
		return session.State{}, session.ErrNotFound
	}
	return st, nil
}

func (m *memSessions) Save(_ context.Context, id string, st session.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[id] = st
	return nil
}

func (m *memSessions) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type failingIssuer struct{}

func (failingIssuer) Issue(tokens.Claims) (string, error) {
	return "", errors.New("no key")
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (c *countingObserver) ObserveLogin(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, outcome)
}

type fakePerms struct {
	perms []models.Permission
	menus []models.Menu
}

func (f *fakePerms) PermissionsByRole(_ context.Context, roleID string) ([]models.Permission, error) {
	var out []models.Permission
	for _, p := range f.perms {
		if p.RoleID == roleID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePerms) MenusByIDs(_ context.Context, ids []string) ([]models.Menu, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Menu
	for _, m := range f.menus {
		if want[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeLocales struct {
	rows []models.Internationalization
}

func (f fakeLocales) AllInternationalization(context.Context) ([]models.Internationalization, error) {
	return f.rows, nil
}
