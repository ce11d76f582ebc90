package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropsaas/portal/internal/authz"
	"github.com/dropsaas/portal/internal/identity"
	"github.com/dropsaas/portal/internal/store/core"
)

// stubProvider simula el proveedor de identidad hosteado.
type stubProvider struct {
	principal *identity.Principal
	err       error
}

func (s *stubProvider) GetUser(_ context.Context, _ string) (*identity.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func (s *stubProvider) SignOut(context.Context, string) error { return nil }

// stubRoleStore simula la fila de rol en la base.
type stubRoleStore struct {
	role string
	err  error
}

func (s *stubRoleStore) GetUserRole(context.Context, string) (string, error) {
	return s.role, s.err
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func doGate(t *testing.T, gate Middleware, withSession bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	r := httptest.NewRequest("GET", "/admin/users", nil)
	if withSession {
		r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "tok"})
	}
	rec := httptest.NewRecorder()
	gate(okHandler(&called)).ServeHTTP(rec, r)
	return rec, called
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, to string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != to {
		t.Fatalf("Location = %q, want %q", loc, to)
	}
}

func TestRequireUser_NoSession(t *testing.T) {
	gate := RequireUser(identity.NewResolver(&stubProvider{err: identity.ErrNoSession}))
	rec, called := doGate(t, gate, false)
	assertRedirect(t, rec, LoginPath)
	if called {
		t.Fatalf("handler corrió sin sesión")
	}
}

func TestRequireUser_AnyPrincipalPasses(t *testing.T) {
	// El gate de usuario no mira el rol: cualquier principal pasa.
	gate := RequireUser(identity.NewResolver(&stubProvider{
		principal: &identity.Principal{ID: "u-1", Email: "a@b.com"},
	}))
	rec, called := doGate(t, gate, true)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("expected allow, got %d called=%v", rec.Code, called)
	}
}

func TestRequireUser_ProviderDownFailsClosed(t *testing.T) {
	// Mismo redirect que sin sesión: el fallo nunca se convierte en acceso.
	gate := RequireUser(identity.NewResolver(&stubProvider{err: errors.New("connection refused")}))
	rec, called := doGate(t, gate, true)
	assertRedirect(t, rec, LoginPath)
	if called {
		t.Fatalf("handler corrió con proveedor caído")
	}
}

func TestRequireAdmin_NoSession(t *testing.T) {
	gate := RequireAdmin(
		identity.NewResolver(&stubProvider{err: identity.ErrNoSession}),
		authz.NewRoleResolver(&stubRoleStore{}, nil, 0),
	)
	rec, called := doGate(t, gate, false)
	assertRedirect(t, rec, LoginPath)
	if called {
		t.Fatalf("handler corrió sin sesión")
	}
}

func TestRequireAdmin_NonAdminRedirectsToDashboard(t *testing.T) {
	gate := RequireAdmin(
		identity.NewResolver(&stubProvider{principal: &identity.Principal{ID: "u-1"}}),
		authz.NewRoleResolver(&stubRoleStore{role: core.RoleUser}, nil, 0),
	)
	rec, called := doGate(t, gate, true)
	assertRedirect(t, rec, DashboardPath+"?"+ReasonParam+"="+ReasonUnauthorized)
	if called {
		t.Fatalf("handler corrió sin rol admin")
	}
}

func TestRequireAdmin_MissingRoleRowIsNonAdmin(t *testing.T) {
	gate := RequireAdmin(
		identity.NewResolver(&stubProvider{principal: &identity.Principal{ID: "u-1"}}),
		authz.NewRoleResolver(&stubRoleStore{err: core.ErrNotFound}, nil, 0),
	)
	rec, called := doGate(t, gate, true)
	assertRedirect(t, rec, DashboardPath+"?"+ReasonParam+"="+ReasonUnauthorized)
	if called {
		t.Fatalf("handler corrió sin fila de rol")
	}
}

func TestRequireAdmin_RoleStoreDownFailsClosed(t *testing.T) {
	gate := RequireAdmin(
		identity.NewResolver(&stubProvider{principal: &identity.Principal{ID: "u-1"}}),
		authz.NewRoleResolver(&stubRoleStore{err: errors.New("pg down")}, nil, 0),
	)
	rec, called := doGate(t, gate, true)
	assertRedirect(t, rec, DashboardPath+"?"+ReasonParam+"="+ReasonUnauthorized)
	if called {
		t.Fatalf("handler corrió con store caído")
	}
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	var gotPrincipal *identity.Principal
	var gotRole string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal = GetPrincipal(r.Context())
		gotRole = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	gate := RequireAdmin(
		identity.NewResolver(&stubProvider{principal: &identity.Principal{ID: "u-9", Email: "root@dropsaas.dev"}}),
		authz.NewRoleResolver(&stubRoleStore{role: core.RoleAdmin}, nil, 0),
	)

	r := httptest.NewRequest("GET", "/admin/users", nil)
	r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "tok"})
	rec := httptest.NewRecorder()
	gate(inner).ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotPrincipal == nil || gotPrincipal.ID != "u-9" {
		t.Fatalf("principal no llegó al contexto: %+v", gotPrincipal)
	}
	if gotRole != core.RoleAdmin {
		t.Fatalf("role = %q, want %q", gotRole, core.RoleAdmin)
	}
}
