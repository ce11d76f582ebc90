package identity

import (
	"context"

	"github.com/dropsaas/portal/internal/http/sessioncookie"
)

// Resolver resuelve el principal autenticado de un request a partir del jar.
type Resolver struct {
	provider Provider
}

// NewResolver crea el resolver de sesión.
func NewResolver(p Provider) *Resolver {
	return &Resolver{provider: p}
}

// Resolve lee el access token del Session Cookie Set y pregunta al proveedor.
//
// Resultados:
//   - (principal, nil): sesión válida.
//   - (nil, ErrNoSession): no hay sesión; resultado normal.
//   - (nil, otro error): no se pudo chequear (proveedor caído, red). El
//     caller distingue este caso para loguearlo, pero nunca lo trata como
//     sesión válida.
func (r *Resolver) Resolve(ctx context.Context, jar *sessioncookie.Jar) (*Principal, error) {
	token, ok := sessioncookie.AccessToken(jar)
	if !ok {
		return nil, ErrNoSession
	}
	return r.provider.GetUser(ctx, token)
}
