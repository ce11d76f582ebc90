package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dropsaas/portal/internal/http/middlewares"
	"github.com/dropsaas/portal/internal/http/sessioncookie"
	"github.com/dropsaas/portal/internal/identity"
)

type fakeProvider struct {
	signOutErr   error
	signOutCalls int
	lastToken    string
}

func (f *fakeProvider) GetUser(_ context.Context, token string) (*identity.Principal, error) {
	return &identity.Principal{ID: "u-1"}, nil
}

func (f *fakeProvider) SignOut(_ context.Context, token string) error {
	f.signOutCalls++
	f.lastToken = token
	return f.signOutErr
}

func doLogout(t *testing.T, c *Controller, cookies map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", "/auth/logout", nil)
	for k, v := range cookies {
		r.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	rec := httptest.NewRecorder()
	c.Logout(rec, r)
	return rec
}

func assertFullClear(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	headers := rec.Header().Values("Set-Cookie")
	if len(headers) != len(sessioncookie.SessionNames) {
		t.Fatalf("expected %d deletion cookies, got %d: %v", len(sessioncookie.SessionNames), len(headers), headers)
	}
	for _, name := range sessioncookie.SessionNames {
		found := false
		for _, h := range headers {
			if strings.HasPrefix(h, name+"=") && strings.Contains(h, "Max-Age=0") {
				found = true
			}
		}
		if !found {
			t.Fatalf("falta borrado con Max-Age=0 para %s", name)
		}
	}
}

func TestLogout_WithSession(t *testing.T) {
	p := &fakeProvider{}
	c := NewController(p, identity.NewResolver(p), nil, nil, false)

	rec := doLogout(t, c, map[string]string{"sb-access-token": "tok-123"})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != middlewares.LoginPath {
		t.Fatalf("Location = %q, want %q", loc, middlewares.LoginPath)
	}
	if p.signOutCalls != 1 || p.lastToken != "tok-123" {
		t.Fatalf("sign-out calls=%d token=%q", p.signOutCalls, p.lastToken)
	}
	assertFullClear(t, rec)
}

func TestLogout_NoCookiesIsIdempotent(t *testing.T) {
	// Sin sesión el logout igual borra todo el set y redirige al login.
	p := &fakeProvider{}
	c := NewController(p, identity.NewResolver(p), nil, nil, false)

	rec := doLogout(t, c, nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if p.signOutCalls != 0 {
		t.Fatalf("sign-out no debería llamarse sin token")
	}
	assertFullClear(t, rec)
}

func TestLogout_ProviderFailureStillClears(t *testing.T) {
	p := &fakeProvider{signOutErr: errors.New("gotrue 503")}
	c := NewController(p, identity.NewResolver(p), nil, nil, false)

	rec := doLogout(t, c, map[string]string{"sb-access-token": "tok"})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 aun con proveedor caído", rec.Code)
	}
	assertFullClear(t, rec)
}

func TestLogout_SecureCookiesInProd(t *testing.T) {
	p := &fakeProvider{}
	c := NewController(p, identity.NewResolver(p), nil, nil, true)

	rec := doLogout(t, c, nil)
	for _, h := range rec.Header().Values("Set-Cookie") {
		if !strings.Contains(h, "Secure") {
			t.Fatalf("expected Secure en prod: %s", h)
		}
	}
}
