// Package auth contiene los controllers de sesión y logout.
package auth

import (
	"context"
	"net/http"

	"github.com/dropsaas/portal/internal/authz"
	"github.com/dropsaas/portal/internal/http/middlewares"
	"github.com/dropsaas/portal/internal/http/sessioncookie"
	"github.com/dropsaas/portal/internal/identity"
	"github.com/dropsaas/portal/internal/metrics"
	"github.com/dropsaas/portal/internal/observability/logger"
)

// UserEnsurer provisiona la fila local de un usuario en su primer login.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, userID, email string) error
}

// Controller maneja /auth/logout y /auth/session.
type Controller struct {
	Provider identity.Provider
	Sessions *identity.Resolver
	Roles    *authz.RoleResolver

	// Users provisiona la fila local en la primera sesión resuelta.
	// Puede ser nil (tests).
	Users UserEnsurer

	// SecureCookies marca Secure en los borrados (solo prod).
	SecureCookies bool
}

// NewController crea el controller de auth.
func NewController(p identity.Provider, sessions *identity.Resolver, roles *authz.RoleResolver, users UserEnsurer, secureCookies bool) *Controller {
	return &Controller{
		Provider:      p,
		Sessions:      sessions,
		Roles:         roles,
		Users:         users,
		SecureCookies: secureCookies,
	}
}

// Logout cierra la sesión. Registrado para POST y para GET (alias
// idempotente: un <a href> debe poder desloguear igual que un form).
//
// Secuencia: sign-out en el proveedor (la falla se loguea y no se
// propaga), borrado incondicional de TODO el Session Cookie Set, drop de
// la entrada de rol cacheada, y 303 al login. El usuario siempre termina
// en /auth/login, haya o no cookies, responda o no el proveedor.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Component("auth.logout"))
	jar := sessioncookie.New(r)

	signout := "skipped"
	if token, ok := sessioncookie.AccessToken(jar); ok {
		// Best-effort: resolver el principal para invalidar su rol cacheado.
		if c.Roles != nil {
			if p, err := c.Provider.GetUser(ctx, token); err == nil && p != nil {
				c.Roles.Invalidate(ctx, p.ID)
			}
		}

		if err := c.Provider.SignOut(ctx, token); err != nil {
			log.Warn("provider sign-out failed", logger.Err(err))
			signout = "failed"
		} else {
			signout = "ok"
		}
	}
	metrics.Logout(signout)

	sessioncookie.ClearSession(jar, c.SecureCookies)
	jar.Apply(w)

	http.Redirect(w, r, middlewares.LoginPath, http.StatusSeeOther)
}
