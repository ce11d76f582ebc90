package middlewares

import (
	"context"

	"github.com/dropsaas/portal/internal/identity"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	// ctxPrincipalKey guarda el principal autenticado
	ctxPrincipalKey ctxKey = "principal"
	// ctxRoleKey guarda el rol resuelto (solo rutas admin-gated)
	ctxRoleKey ctxKey = "role"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// =================================================================================
// CONTEXT SETTERS (Internos, usados por middlewares)
// =================================================================================

// WithPrincipal inyecta el principal en el contexto
func WithPrincipal(ctx context.Context, p *identity.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// WithRole inyecta el rol resuelto en el contexto
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxRoleKey, role)
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// =================================================================================
// CONTEXT GETTERS (Públicos, usados por controllers/services)
// =================================================================================

// GetPrincipal obtiene el principal del contexto.
// Retorna nil si el request no pasó por un gate.
func GetPrincipal(ctx context.Context) *identity.Principal {
	if v := ctx.Value(ctxPrincipalKey); v != nil {
		if p, ok := v.(*identity.Principal); ok {
			return p
		}
	}
	return nil
}

// GetRole obtiene el rol resuelto del contexto.
// Retorna cadena vacía si no hubo resolución de rol.
func GetRole(ctx context.Context) string {
	if v := ctx.Value(ctxRoleKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
