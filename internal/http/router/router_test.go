package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropsaas/portal/internal/authz"
	"github.com/dropsaas/portal/internal/cache"
	adminctrl "github.com/dropsaas/portal/internal/http/controllers/admin"
	authctrl "github.com/dropsaas/portal/internal/http/controllers/auth"
	healthctrl "github.com/dropsaas/portal/internal/http/controllers/health"
	pagesctrl "github.com/dropsaas/portal/internal/http/controllers/pages"
	userctrl "github.com/dropsaas/portal/internal/http/controllers/user"
	"github.com/dropsaas/portal/internal/http/sessioncookie"
	"github.com/dropsaas/portal/internal/identity"
	"github.com/dropsaas/portal/internal/store/core"
)

// memProvider resuelve tokens contra un mapa en memoria.
type memProvider struct {
	users map[string]*identity.Principal
}

func (m *memProvider) GetUser(_ context.Context, token string) (*identity.Principal, error) {
	if p, ok := m.users[token]; ok {
		return p, nil
	}
	return nil, identity.ErrNoSession
}

func (m *memProvider) SignOut(context.Context, string) error { return nil }

// memRoles sirve la fila de rol de cada usuario.
type memRoles struct {
	roles map[string]string
}

func (m *memRoles) GetUserRole(_ context.Context, userID string) (string, error) {
	if r, ok := m.roles[userID]; ok {
		return r, nil
	}
	return "", core.ErrNotFound
}

func (m *memRoles) ListUsers(context.Context, int, int) ([]core.User, error) {
	return nil, nil
}

func (m *memRoles) SetUserRole(context.Context, string, string) error { return nil }

func newTestHandler() http.Handler {
	provider := &memProvider{users: map[string]*identity.Principal{
		"tok-admin": {ID: "u-admin", Email: "root@dropsaas.dev"},
		"tok-user":  {ID: "u-user", Email: "ana@dropsaas.dev"},
	}}
	store := &memRoles{roles: map[string]string{
		"u-admin": core.RoleAdmin,
		"u-user":  core.RoleUser,
	}}

	sessions := identity.NewResolver(provider)
	roles := authz.NewRoleResolver(store, cache.NewMemory("t", time.Minute), time.Minute)

	return New(Deps{
		Sessions: sessions,
		Roles:    roles,
		Auth:     authctrl.NewController(provider, sessions, roles, nil, false),
		Admin:    adminctrl.NewController(store, roles),
		User:     userctrl.NewController(roles),
		Pages:    pagesctrl.NewController(map[string]any{"headline": "DropSaaS"}),
		Health:   healthctrl.NewController(nil, nil),
	})
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("GET", path, nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	h := newTestHandler()

	require.Equal(t, http.StatusOK, get(h, "/healthz", "").Code)
	require.Equal(t, http.StatusOK, get(h, "/auth/login", "").Code)

	landing := get(h, "/api/pages/landing", "")
	require.Equal(t, http.StatusOK, landing.Code)
	require.Contains(t, landing.Body.String(), "DropSaaS")
}

func TestUserDashboard_Gated(t *testing.T) {
	h := newTestHandler()

	anon := get(h, "/user/dashboard", "")
	require.Equal(t, http.StatusSeeOther, anon.Code)
	require.Equal(t, "/auth/login", anon.Header().Get("Location"))

	authed := get(h, "/user/dashboard", "tok-user")
	require.Equal(t, http.StatusOK, authed.Code)
	require.Contains(t, authed.Body.String(), "u-user")
}

func TestAdminArea_Gated(t *testing.T) {
	h := newTestHandler()

	anon := get(h, "/admin/users", "")
	require.Equal(t, http.StatusSeeOther, anon.Code)
	require.Equal(t, "/auth/login", anon.Header().Get("Location"))

	nonAdmin := get(h, "/admin/users", "tok-user")
	require.Equal(t, http.StatusSeeOther, nonAdmin.Code)
	require.Equal(t, "/user/dashboard?error=unauthorized", nonAdmin.Header().Get("Location"))

	admin := get(h, "/admin/users", "tok-admin")
	require.Equal(t, http.StatusOK, admin.Code)
}

func TestUnknownToken_IsNonAdmin(t *testing.T) {
	h := newTestHandler()

	rec := get(h, "/admin/users", "tok-desconocido")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestLogout_GETAliasClearsEverything(t *testing.T) {
	h := newTestHandler()

	for _, method := range []string{"GET", "POST"} {
		r := httptest.NewRequest(method, "/auth/logout", nil)
		r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "tok-user"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		require.Equal(t, http.StatusSeeOther, rec.Code, method)
		require.Equal(t, "/auth/login", rec.Header().Get("Location"), method)

		cleared := rec.Header().Values("Set-Cookie")
		require.Len(t, cleared, len(sessioncookie.SessionNames), method)
		for _, ck := range cleared {
			require.Contains(t, ck, "Max-Age=0", method)
		}
	}
}

func TestLogout_NoSessionStillRedirects(t *testing.T) {
	h := newTestHandler()

	rec := get(h, "/auth/logout", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestAuthSession(t *testing.T) {
	h := newTestHandler()

	require.Equal(t, http.StatusUnauthorized, get(h, "/auth/session", "").Code)

	rec := get(h, "/auth/session", "tok-admin")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `"role":"admin"`), rec.Body.String())
}

func TestNoStoreOnAuthRoutes(t *testing.T) {
	h := newTestHandler()

	rec := get(h, "/auth/session", "tok-user")
	require.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}
