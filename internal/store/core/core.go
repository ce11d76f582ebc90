// Package core define los tipos de dominio y errores compartidos del store.
package core

import (
	"errors"
	"time"
)

// Errores sentinel del store.
var (
	ErrNotFound = errors.New("store: not found")
	ErrInvalid  = errors.New("store: invalid input")
)

// User es la fila persistida de un usuario del portal.
// El principal lo crea el proveedor de identidad; acá solo guardamos
// la relación con el rol y metadata mínima.
type User struct {
	ID        string
	Email     string
	Role      string // nombre del rol; vacío si no tiene fila en app_role
	CreatedAt time.Time
}

// Roles conocidos. La autorización del portal compara contra RoleAdmin;
// cualquier otro valor (o ausencia) es tratado como usuario común.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole indica si el nombre de rol es uno de los soportados.
func ValidRole(name string) bool {
	return name == RoleAdmin || name == RoleUser
}
