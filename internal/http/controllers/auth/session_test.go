package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dropsaas/portal/internal/identity"
)

type errProvider struct{ err error }

func (e *errProvider) GetUser(context.Context, string) (*identity.Principal, error) {
	return nil, e.err
}

func (e *errProvider) SignOut(context.Context, string) error { return nil }

type ensurerSpy struct {
	id    string
	email string
	calls int
}

func (s *ensurerSpy) EnsureUser(_ context.Context, id, email string) error {
	s.calls++
	s.id, s.email = id, email
	return nil
}

func getSession(t *testing.T, c *Controller, token string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("GET", "/auth/session", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: token})
	}
	rec := httptest.NewRecorder()
	c.Session(rec, r)
	return rec
}

func TestSession_NoCookie(t *testing.T) {
	p := &errProvider{err: identity.ErrNoSession}
	c := NewController(p, identity.NewResolver(p), nil, nil, false)

	rec := getSession(t, c, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSession_ProviderDownIs502(t *testing.T) {
	// Upstream caído NO es 401: el cliente no debe descartar su sesión
	// por una falla transitoria del chequeo.
	p := &errProvider{err: errors.New("dial tcp: connection refused")}
	c := NewController(p, identity.NewResolver(p), nil, nil, false)

	rec := getSession(t, c, "tok")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestSession_ProvisionsLocalUser(t *testing.T) {
	p := &fakeProvider{}
	spy := &ensurerSpy{}
	c := NewController(p, identity.NewResolver(p), nil, spy, false)

	rec := getSession(t, c, "tok")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if spy.calls != 1 || spy.id != "u-1" {
		t.Fatalf("EnsureUser calls=%d id=%q", spy.calls, spy.id)
	}
	if !strings.Contains(rec.Body.String(), `"id":"u-1"`) {
		t.Fatalf("body = %s", rec.Body)
	}
}
