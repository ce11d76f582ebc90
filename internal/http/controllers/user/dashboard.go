// Package user contiene los controllers del área de usuario (user-gated).
package user

import (
	"net/http"

	"github.com/dropsaas/portal/internal/authz"
	"github.com/dropsaas/portal/internal/http/helpers"
	"github.com/dropsaas/portal/internal/http/middlewares"
	"github.com/dropsaas/portal/internal/observability/logger"
)

// Controller maneja /user/dashboard.
type Controller struct {
	Roles *authz.RoleResolver
}

// NewController crea el controller del área de usuario.
func NewController(roles *authz.RoleResolver) *Controller {
	return &Controller{Roles: roles}
}

type dashboardResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	// Notice re-emite el código de razón del redirect de un gate
	// (ej: error=unauthorized tras rebotar del área admin).
	Notice string `json:"notice,omitempty"`
}

// Dashboard responde GET /user/dashboard.
// El gate ya corrió: el principal está en el contexto.
func (c *Controller) Dashboard(w http.ResponseWriter, r *http.Request) {
	p := middlewares.GetPrincipal(r.Context())
	if p == nil {
		// Ruta mal cableada sin gate; no inventar un principal.
		http.Redirect(w, r, middlewares.LoginPath, http.StatusSeeOther)
		return
	}

	resp := dashboardResponse{
		ID:     p.ID,
		Email:  p.Email,
		Notice: r.URL.Query().Get(middlewares.ReasonParam),
	}
	if c.Roles != nil {
		role, err := c.Roles.Resolve(r.Context(), p.ID)
		if err != nil {
			logger.From(r.Context()).Warn("role resolution failed", logger.UserID(p.ID), logger.Err(err))
		}
		resp.Role = role
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
