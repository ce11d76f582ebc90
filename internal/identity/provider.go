// Package identity integra el proveedor de identidad hosteado.
//
// El portal no maneja credenciales: el login vive en el proveedor.
// Acá solo se resuelve "¿quién es el principal de este request?" y se
// propaga el sign-out.
package identity

import (
	"context"
	"errors"
)

// Principal es el actor autenticado de un request.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// ErrNoSession indica ausencia de sesión: token faltante, vencido o
// rechazado por el proveedor. Es un resultado normal, no una falla.
// Cualquier otro error de GetUser es "no se pudo chequear" y los gates
// deben tratarlo como fail-closed.
var ErrNoSession = errors.New("identity: no session")

// Provider es la capability inyectada a resolver y logout.
// Cualquier proveedor conforme (cookie-based o token-based) sirve.
type Provider interface {
	// GetUser resuelve el principal del access token.
	// Retorna ErrNoSession si el token no identifica a nadie.
	GetUser(ctx context.Context, accessToken string) (*Principal, error)

	// SignOut revoca la sesión del lado del proveedor.
	SignOut(ctx context.Context, accessToken string) error
}
