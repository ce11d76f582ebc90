// Package router arma el árbol de rutas del portal sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropsaas/portal/internal/authz"
	adminctrl "github.com/dropsaas/portal/internal/http/controllers/admin"
	authctrl "github.com/dropsaas/portal/internal/http/controllers/auth"
	billingctrl "github.com/dropsaas/portal/internal/http/controllers/billing"
	contactctrl "github.com/dropsaas/portal/internal/http/controllers/contact"
	healthctrl "github.com/dropsaas/portal/internal/http/controllers/health"
	pagesctrl "github.com/dropsaas/portal/internal/http/controllers/pages"
	userctrl "github.com/dropsaas/portal/internal/http/controllers/user"
	mw "github.com/dropsaas/portal/internal/http/middlewares"
	"github.com/dropsaas/portal/internal/identity"
	"github.com/dropsaas/portal/internal/rate"
)

// Deps contiene todo lo que el router necesita cablear.
type Deps struct {
	Sessions *identity.Resolver
	Roles    *authz.RoleResolver

	Auth    *authctrl.Controller
	Admin   *adminctrl.Controller
	User    *userctrl.Controller
	Billing *billingctrl.Controller // nil si billing está deshabilitado
	Contact *contactctrl.Controller // nil si SMTP está deshabilitado
	Pages   *pagesctrl.Controller
	Health  *healthctrl.Controller

	// ContactLimiter limita el formulario de contacto por IP.
	// nil = sin límite (dev).
	ContactLimiter rate.Limiter

	MetricsHandler http.Handler // nil si métricas deshabilitadas
}

// New construye el handler raíz.
//
// Familias de rutas y sus gates:
//   - públicas: /healthz /readyz /metrics /api/pages/* /api/contact /auth/*
//   - user-gated: /user/* /api/billing/*
//   - admin-gated: /admin/*
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Cadena base para todo el árbol.
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithMetrics(chiRoutePattern),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
	)

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Get("/login", d.Auth.LoginPage)
		r.Get("/session", d.Auth.Session)
		// GET es alias idempotente del POST: mismo logout completo.
		r.Post("/logout", d.Auth.Logout)
		r.Get("/logout", d.Auth.Logout)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(mw.WithNoStore(), mw.RequireUser(d.Sessions))
		r.Get("/dashboard", d.User.Dashboard)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.WithNoStore(), mw.RequireAdmin(d.Sessions, d.Roles))
		r.Get("/users", d.Admin.ListUsers)
		r.Put("/users/{id}/role", d.Admin.SetRole)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/pages/landing", d.Pages.LandingPage)
		if d.Contact != nil {
			contact := r
			if d.ContactLimiter != nil {
				contact = r.With(mw.WithRateLimit(d.ContactLimiter))
			}
			contact.Post("/contact", d.Contact.Submit)
		}
		if d.Billing != nil {
			r.With(mw.RequireUser(d.Sessions)).Post("/billing/checkout", d.Billing.CreateCheckout)
		}
	})

	return r
}

// chiRoutePattern devuelve el patrón de ruta de chi para métricas
// (ej: /admin/users/{id}/role en vez del path con el id real).
func chiRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
