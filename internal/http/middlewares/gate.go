package middlewares

import (
	"errors"
	"net/http"

	"github.com/dropsaas/portal/internal/authz"
	"github.com/dropsaas/portal/internal/http/sessioncookie"
	"github.com/dropsaas/portal/internal/identity"
	"github.com/dropsaas/portal/internal/metrics"
	"github.com/dropsaas/portal/internal/observability/logger"
)

// =================================================================================
// ROUTE GATES
// =================================================================================

// Destinos de redirect de los gates. Son contrato externo con el cliente
// web: no cambiar sin coordinar.
const (
	LoginPath     = "/auth/login"
	DashboardPath = "/user/dashboard"

	// ReasonParam es el query param con el código de razón del redirect.
	ReasonParam        = "error"
	ReasonUnauthorized = "unauthorized"
)

// Decisiones reportadas a métricas.
const (
	decisionAllow           = "allow"
	decisionUnauthenticated = "unauthenticated"
	decisionUnauthorized    = "unauthorized"
	decisionCheckFailed     = "check_failed"
)

// RequireUser exige un principal resuelto; el rol no se chequea.
//
// Estados: Unauthenticated → 303 a /auth/login. Authorized → el principal
// queda en el contexto y sigue la cadena. Un fallo del proveedor al
// chequear la sesión se loguea y se trata como Unauthenticated: el gate
// nunca convierte "no pude chequear" en acceso.
func RequireUser(sessions *identity.Resolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := resolvePrincipal(w, r, sessions, "user")
			if !ok {
				return
			}
			metrics.GateDecision("user", decisionAllow)
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdmin exige un principal cuyo rol resuelto sea exactamente "admin".
//
// Estados: Unauthenticated → 303 a /auth/login. Unauthorized (principal
// válido, rol ausente o distinto de admin) → 303 a
// /user/dashboard?error=unauthorized: el usuario está bien identificado,
// solo que no permitido, así que no vuelve al login. Authorized → sigue
// la cadena con principal y rol en el contexto.
//
// Todo redirect es terminal: el handler protegido no corre.
func RequireAdmin(sessions *identity.Resolver, roles *authz.RoleResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := resolvePrincipal(w, r, sessions, "admin")
			if !ok {
				return
			}

			role, err := roles.Resolve(r.Context(), p.ID)
			if err != nil {
				// Lookup fallido resuelve a rol ausente, nunca a privilegio.
				logger.From(r.Context()).Error("role resolution failed",
					logger.Gate("admin"),
					logger.UserID(p.ID),
					logger.Err(err),
				)
			}
			if !authz.IsAdmin(role) {
				metrics.GateDecision("admin", decisionUnauthorized)
				redirect(w, r, DashboardPath+"?"+ReasonParam+"="+ReasonUnauthorized)
				return
			}

			metrics.GateDecision("admin", decisionAllow)
			ctx := WithRole(WithPrincipal(r.Context(), p), role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolvePrincipal corre el Session Resolver y maneja los dos caminos que
// terminan en login. Retorna (principal, true) solo si hay sesión válida.
func resolvePrincipal(w http.ResponseWriter, r *http.Request, sessions *identity.Resolver, gate string) (*identity.Principal, bool) {
	jar := sessioncookie.New(r)
	p, err := sessions.Resolve(r.Context(), jar)
	if err != nil {
		if errors.Is(err, identity.ErrNoSession) {
			metrics.GateDecision(gate, decisionUnauthenticated)
		} else {
			// Proveedor caído: fail-closed, mismo redirect que sin sesión,
			// pero con log para operadores.
			logger.From(r.Context()).Error("session check failed",
				logger.Gate(gate),
				logger.Err(err),
			)
			metrics.GateDecision(gate, decisionCheckFailed)
		}
		redirect(w, r, LoginPath)
		return nil, false
	}
	return p, true
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
