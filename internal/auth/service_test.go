package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/userhub/internal/permissions"
	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/roles"
	"github.com/userhub/userhub/internal/shared"
	"github.com/userhub/userhub/internal/users"
)

type userDirectory map[string]users.User

func (d userDirectory) FindByUsername(_ context.Context, username string) (users.User, error) {
	u, ok := d[username]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

type roleDirectory map[string]roles.Role

func (d roleDirectory) FindAllByName(_ context.Context, names []string) ([]roles.Role, error) {
	out := []roles.Role{}
	for _, n := range names {
		if r, ok := d[n]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type fixture struct {
	service *Service
	clock   *clock
	store   *RedisRevocationStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	hasher := shared.NewBcryptHasher(4)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	dir := userDirectory{
		"admin": {ID: "1", Username: "admin", PasswordHash: hash, Roles: []string{"ADMIN", "USER"}},
		"john":  {ID: "2", Username: "john", PasswordHash: hash, Roles: []string{"USER"}},
	}
	roleDir := roleDirectory{
		"ADMIN": {Name: "ADMIN", Permissions: []permissions.Permission{{Name: shared.PermDeleteData}}},
		"USER":  {Name: "USER"},
	}
	c := &clock{t: time.Now().Truncate(time.Second)}
	store, _ := newRedisStore(t)
	store.now = c.now
	svc := NewService(dir, roleDir, hasher, newTestIssuer(c), store, nil)
	return fixture{service: svc, clock: c, store: store}
}

func (f fixture) login(t *testing.T, username string) string {
	t.Helper()
	resp, err := f.service.Authenticate(context.Background(), AuthenticationRequest{Username: username, Password: "password123"})
	require.NoError(t, err)
	require.True(t, resp.Authenticated)
	return resp.Token
}

func TestAuthenticateBuildsScope(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "admin")

	principal, err := f.service.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin", principal.Username)
	assert.Equal(t, []string{"ROLE_ADMIN", "DELETE_DATA", "ROLE_USER"}, principal.Authorities)
	assert.True(t, principal.HasRole("ADMIN"))
	assert.True(t, principal.HasAuthority(shared.PermDeleteData))
}

func TestAuthenticateFailuresLookAlike(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Authenticate(context.Background(), AuthenticationRequest{Username: "john", Password: "wrong-password"})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	_, err = f.service.Authenticate(context.Background(), AuthenticationRequest{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestIntrospect(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "john")

	resp, err := f.service.Introspect(context.Background(), TokenRequest{Token: token})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.ExpiresAt)

	resp, err = f.service.Introspect(context.Background(), TokenRequest{Token: "garbage"})
	require.NoError(t, err)
	assert.False(t, resp.Valid)

	f.clock.advance(2 * time.Hour)
	resp, err = f.service.Introspect(context.Background(), TokenRequest{Token: token})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "john")

	require.NoError(t, f.service.Logout(context.Background(), TokenRequest{Token: token}))

	resp, err := f.service.Introspect(context.Background(), TokenRequest{Token: token})
	require.NoError(t, err)
	assert.False(t, resp.Valid)

	_, err = f.service.Verify(context.Background(), token)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	// Second logout and garbage tokens are no-ops.
	assert.NoError(t, f.service.Logout(context.Background(), TokenRequest{Token: token}))
	assert.NoError(t, f.service.Logout(context.Background(), TokenRequest{Token: "garbage"}))
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "john")
	f.clock.advance(2 * time.Hour)

	resp, err := f.service.Refresh(context.Background(), TokenRequest{Token: token})
	require.NoError(t, err)
	assert.NotEqual(t, token, resp.Token)

	_, err = f.service.Verify(context.Background(), resp.Token)
	assert.NoError(t, err)

	_, err = f.service.Refresh(context.Background(), TokenRequest{Token: token})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated, "a refreshed token cannot be reused")

	f.clock.advance(11 * time.Hour)
	_, err = f.service.Refresh(context.Background(), TokenRequest{Token: resp.Token})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestMiddleware(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "john")
	authn := Authenticator{Service: f.service}

	var seen rbac.Principal
	protected := authn.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = rbac.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/myInfo", nil)
	res := httptest.NewRecorder()
	protected.ServeHTTP(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), `"code":1006`)

	req = httptest.NewRequest(http.MethodGet, "/users/myInfo", nil)
	req.Header.Set("Authorization", "Basic "+token)
	res = httptest.NewRecorder()
	protected.ServeHTTP(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	req = httptest.NewRequest(http.MethodGet, "/users/myInfo", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res = httptest.NewRecorder()
	protected.ServeHTTP(res, req)
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Equal(t, "john", seen.Username)
	assert.Equal(t, []string{"ROLE_USER"}, seen.Authorities)
}

func TestHandlerRoutes(t *testing.T) {
	f := newFixture(t)
	r := chi.NewRouter()
	r.Route("/auth", NewHandler(nil, f.service, shared.NewValidator()).MountRoutes)

	post := func(path, body string) (int, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		res := httptest.NewRecorder()
		r.ServeHTTP(res, req)
		var out map[string]any
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
		return res.Code, out
	}

	status, body := post("/auth/token", `{"username":"john","password":"password123"}`)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1000, body["code"])
	result := body["result"].(map[string]any)
	assert.Equal(t, true, result["authenticated"])
	token := result["token"].(string)

	status, body = post("/auth/token", `{"username":"john","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.EqualValues(t, 1006, body["code"])
	assert.Equal(t, "Unauthenticated", body["message"])

	status, body = post("/auth/introspect", `{"token":"`+token+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["result"].(map[string]any)["valid"])

	status, _ = post("/auth/logout", `{"token":"`+token+`"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = post("/auth/introspect", `{"token":"`+token+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["result"].(map[string]any)["valid"])

	status, body = post("/auth/token", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.EqualValues(t, 1009, body["code"])
}
