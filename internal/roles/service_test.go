package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/userhub/internal/permissions"
	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/shared"
)

type memoryRepo struct {
	items map[string]Role
}

func (m *memoryRepo) Save(_ context.Context, r Role) (Role, error) {
	m.items[r.Name] = r
	return r, nil
}

func (m *memoryRepo) FindAll(context.Context) ([]Role, error) {
	out := make([]Role, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRepo) DeleteByID(_ context.Context, name string) (bool, error) {
	_, ok := m.items[name]
	delete(m.items, name)
	return ok, nil
}

type permissionSet map[string]permissions.Permission

func (s permissionSet) FindAllByName(_ context.Context, names []string) ([]permissions.Permission, error) {
	out := []permissions.Permission{}
	for _, n := range names {
		if p, ok := s[n]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := &memoryRepo{items: map[string]Role{}}
	perms := permissionSet{
		shared.PermDeleteData: {Name: shared.PermDeleteData, Description: "Delete data"},
		"APPROVE_POST":        {Name: "APPROVE_POST"},
	}
	return NewService(repo, perms), repo
}

func TestCreateResolvesKnownPermissions(t *testing.T) {
	svc, repo := newTestService()

	resp, err := svc.Create(context.Background(), RoleRequest{
		Name:        "EDITOR",
		Description: "Edits things",
		Permissions: []string{"APPROVE_POST", "NOT_A_PERMISSION"},
	})
	require.NoError(t, err)

	assert.Equal(t, "EDITOR", resp.Name)
	require.Len(t, resp.Permissions, 1)
	assert.Equal(t, "APPROVE_POST", resp.Permissions[0].Name)
	assert.Equal(t, []string{"APPROVE_POST"}, repo.items["EDITOR"].PermissionNames())
}

func TestToRoleIgnoresPermissions(t *testing.T) {
	role := ToRole(RoleRequest{Name: " ADMIN ", Permissions: []string{shared.PermDeleteData}})

	assert.Equal(t, "ADMIN", role.Name)
	assert.Empty(t, role.Permissions)
	assert.NotNil(t, ToRoleResponse(role).Permissions)
}

func TestDeleteRole(t *testing.T) {
	svc, repo := newTestService()
	repo.items["EDITOR"] = Role{Name: "EDITOR"}

	err := svc.Delete(context.Background(), rbac.Principal{}, "EDITOR")
	require.ErrorIs(t, err, shared.ErrUnauthenticated)

	err = svc.Delete(context.Background(), rbac.Principal{Username: "john", Authorities: []string{"ROLE_USER"}}, "EDITOR")
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	err = svc.Delete(context.Background(), rbac.Principal{Username: "admin", Authorities: []string{shared.PermDeleteData}}, "EDITOR")
	require.NoError(t, err)
	assert.Empty(t, repo.items)

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRoleRequestNameRules(t *testing.T) {
	v := shared.NewValidator()

	for _, name := range []string{"", "   ", "X DELETE_DATA", "EDITOR\n"} {
		err := v.Check(RoleRequest{Name: name}, nil)
		code, _ := shared.CodeOf(err)
		assert.Equal(t, shared.ErrInvalidKey, code, "%q", name)
	}
	assert.NoError(t, v.Check(RoleRequest{Name: "EDITOR", Permissions: []string{"APPROVE_POST"}}, nil))
}
