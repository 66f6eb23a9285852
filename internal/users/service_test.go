package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/roles"
	"github.com/userhub/userhub/internal/shared"
)

type memoryRepo struct {
	users  map[string]User
	nextID int
	saves  int

	failSave error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User)}
}

func (m *memoryRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) FindByID(_ context.Context, id string) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) FindByUsername(_ context.Context, username string) (User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (m *memoryRepo) FindAll(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memoryRepo) Save(_ context.Context, u User) (User, error) {
	if m.failSave != nil {
		return User{}, m.failSave
	}
	m.saves++
	if u.ID == "" {
		m.nextID++
		u.ID = fmt.Sprintf("user-%d", m.nextID)
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	return true, nil
}

type staticRoles map[string]roles.Role

func (s staticRoles) FindAllByName(_ context.Context, names []string) ([]roles.Role, error) {
	out := []roles.Role{}
	for _, n := range names {
		if r, ok := s[n]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestService(repo *memoryRepo) *Service {
	lookup := staticRoles{
		shared.RoleAdmin: {Name: shared.RoleAdmin},
		shared.RoleUser:  {Name: shared.RoleUser},
	}
	return NewService(repo, lookup, shared.NewBcryptHasher(4), nil)
}

func principal(username string, authorities ...string) rbac.Principal {
	return rbac.Principal{Username: username, TokenID: "jti-" + username, Authorities: authorities}
}

func seedUser(t *testing.T, svc *Service, username string) UserResponse {
	t.Helper()
	resp, err := svc.CreateUser(context.Background(), UserCreationRequest{
		Username:  username,
		Password:  "password123",
		FirstName: "First",
		LastName:  "Last",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateUserAssignsDefaultRoleAndHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	dob := shared.NewDate(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))

	resp, err := svc.CreateUser(context.Background(), UserCreationRequest{
		Username:  "john",
		Password:  "12345678",
		FirstName: "John",
		LastName:  "Doe",
		Dob:       &dob,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "john", resp.Username)
	assert.Equal(t, []string{shared.RoleUser}, resp.Roles)
	require.NotNil(t, resp.Dob)
	assert.Equal(t, "1990-01-01", resp.Dob.Format(shared.DateLayout))

	stored := repo.users[resp.ID]
	assert.NotEqual(t, "12345678", stored.PasswordHash)
	assert.NoError(t, shared.NewBcryptHasher(4).Compare(stored.PasswordHash, "12345678"))
}

func TestCreateUserRejectsExistingUsername(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedUser(t, svc, "john")
	saves := repo.saves

	_, err := svc.CreateUser(context.Background(), UserCreationRequest{Username: "john", Password: "password123"})

	require.ErrorIs(t, err, shared.ErrUserExisted)
	assert.Equal(t, saves, repo.saves, "conflict must not write")
	assert.Len(t, repo.users, 1)
}

func TestCreateUserMapsDuplicateRace(t *testing.T) {
	repo := newMemoryRepo()
	repo.failSave = fmt.Errorf("users: save: %w", shared.ErrDuplicate)
	svc := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), UserCreationRequest{Username: "john", Password: "password123"})

	assert.ErrorIs(t, err, shared.ErrUserExisted)
}

func TestGetMyInfo(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	created := seedUser(t, svc, "alice")

	resp, err := svc.GetMyInfo(context.Background(), principal("alice"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)

	_, err = svc.GetMyInfo(context.Background(), principal("ghost"))
	assert.ErrorIs(t, err, shared.ErrUserNotExisted)

	_, err = svc.GetMyInfo(context.Background(), rbac.Principal{})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestUpdateUserByOwner(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	created := seedUser(t, svc, "alice")
	oldHash := repo.users[created.ID].PasswordHash
	first := "Alicia"

	resp, err := svc.UpdateUser(context.Background(), principal("alice"), created.ID, UserUpdateRequest{
		Password:  "newpassword",
		FirstName: &first,
		Roles:     []string{shared.RoleAdmin, "UNKNOWN"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Alicia", resp.FirstName)
	assert.Equal(t, "Last", resp.LastName)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, []string{shared.RoleAdmin}, resp.Roles)
	assert.NotEqual(t, oldHash, repo.users[created.ID].PasswordHash)
}

func TestUpdateUserKeepsRolesWhenAbsent(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	created := seedUser(t, svc, "alice")

	resp, err := svc.UpdateUser(context.Background(), principal("alice"), created.ID, UserUpdateRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{shared.RoleUser}, resp.Roles)
}

func TestUpdateUserByOtherCallerWritesNothing(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	bob := seedUser(t, svc, "bob")
	saves := repo.saves
	name := "Mallory"

	_, err := svc.UpdateUser(context.Background(), principal("alice"), bob.ID, UserUpdateRequest{FirstName: &name})

	require.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Equal(t, saves, repo.saves)
	assert.Equal(t, "First", repo.users[bob.ID].FirstName)
}

func TestUpdateUserUnknownID(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.UpdateUser(context.Background(), principal("alice"), "missing", UserUpdateRequest{})

	assert.ErrorIs(t, err, shared.ErrUserNotExisted)
}

func TestDeleteUser(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	bob := seedUser(t, svc, "bob")

	err := svc.DeleteUser(context.Background(), principal("alice", "ROLE_USER"), bob.ID)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Contains(t, repo.users, bob.ID)

	err = svc.DeleteUser(context.Background(), rbac.Principal{}, bob.ID)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)

	admin := principal("admin", "ROLE_ADMIN", shared.PermDeleteData)
	require.NoError(t, svc.DeleteUser(context.Background(), admin, bob.ID))
	assert.NotContains(t, repo.users, bob.ID)

	err = svc.DeleteUser(context.Background(), admin, bob.ID)
	assert.ErrorIs(t, err, shared.ErrUserNotExisted)
}

func TestGetUsersRequiresAdminRole(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	seedUser(t, svc, "bob")
	seedUser(t, svc, "alice")

	_, err := svc.GetUsers(context.Background(), principal("alice", "ROLE_USER"))
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	// A permission named like the role is not the role.
	_, err = svc.GetUsers(context.Background(), principal("alice", "ADMIN"))
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	list, err := svc.GetUsers(context.Background(), principal("root", "ROLE_ADMIN"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, "bob", list[1].Username)
}

func TestGetUserPostGuard(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	alice := seedUser(t, svc, "alice")
	bob := seedUser(t, svc, "bob")

	resp, err := svc.GetUser(context.Background(), principal("alice"), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)

	_, err = svc.GetUser(context.Background(), principal("alice"), bob.ID)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Equal(t, 1007, err.(shared.ErrorCode).Code)

	_, err = svc.GetUser(context.Background(), principal("alice"), "missing")
	assert.ErrorIs(t, err, shared.ErrUserNotExisted)
}

func TestEnsureAdmin(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	created, err := svc.EnsureAdmin(context.Background(), "admin", "admin")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(context.Background(), "admin", "admin")
	require.NoError(t, err)
	assert.False(t, created)

	require.Len(t, repo.users, 1)
	for _, u := range repo.users {
		assert.Equal(t, []string{shared.RoleAdmin}, u.Roles)
	}
}

func TestServicePropagatesRepositoryErrors(t *testing.T) {
	repo := newMemoryRepo()
	boom := errors.New("db down")
	repo.failSave = boom
	svc := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), UserCreationRequest{Username: "john", Password: "password123"})

	assert.ErrorIs(t, err, boom)
}
