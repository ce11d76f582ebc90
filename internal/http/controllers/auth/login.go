package auth

import (
	"net/http"

	"github.com/dropsaas/portal/internal/http/helpers"
)

// LoginURL es la URL del flujo de login hosteado que el cliente debe
// iniciar; el backend no maneja credenciales.
type LoginInfo struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason,omitempty"`
}

// LoginPage responde GET /auth/login.
// Es el destino de todos los redirects por falta de sesión; devuelve la
// info mínima para que el cliente arranque el flujo del proveedor.
func (c *Controller) LoginPage(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, LoginInfo{
		Provider: "hosted",
		Reason:   r.URL.Query().Get("reason"),
	})
}
