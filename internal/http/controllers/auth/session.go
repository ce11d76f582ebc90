package auth

import (
	stderrors "errors"
	"net/http"

	"github.com/dropsaas/portal/internal/http/errors"
	"github.com/dropsaas/portal/internal/http/helpers"
	"github.com/dropsaas/portal/internal/http/sessioncookie"
	"github.com/dropsaas/portal/internal/identity"
	"github.com/dropsaas/portal/internal/observability/logger"
)

type sessionResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Session devuelve el principal actual, o 401 si no hay sesión.
// Lo consume el cliente web para hidratar su estado de auth.
func (c *Controller) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jar := sessioncookie.New(r)

	p, err := c.Sessions.Resolve(ctx, jar)
	if err != nil {
		if stderrors.Is(err, identity.ErrNoSession) {
			errors.WriteError(w, errors.ErrUnauthorized)
			return
		}
		logger.From(ctx).Error("session check failed", logger.Err(err))
		errors.WriteError(w, errors.ErrUpstreamUnavailable)
		return
	}

	// El proveedor es el dueño de la cuenta; la fila local existe para
	// colgarle el rol. Se provisiona acá, al hidratar la primera sesión.
	if c.Users != nil {
		if err := c.Users.EnsureUser(ctx, p.ID, p.Email); err != nil {
			logger.From(ctx).Warn("user provisioning failed", logger.UserID(p.ID), logger.Err(err))
		}
	}

	resp := sessionResponse{ID: p.ID, Email: p.Email}
	if c.Roles != nil {
		role, err := c.Roles.Resolve(ctx, p.ID)
		if err != nil {
			logger.From(ctx).Warn("role resolution failed", logger.UserID(p.ID), logger.Err(err))
		}
		resp.Role = role
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
