// Package admin contiene los controllers del área admin (admin-gated).
package admin

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropsaas/portal/internal/authz"
	"github.com/dropsaas/portal/internal/http/errors"
	"github.com/dropsaas/portal/internal/http/helpers"
	"github.com/dropsaas/portal/internal/observability/logger"
	"github.com/dropsaas/portal/internal/store/core"
)

// UserStore es lo que el área admin necesita del store.
type UserStore interface {
	ListUsers(ctx context.Context, limit, offset int) ([]core.User, error)
	SetUserRole(ctx context.Context, userID, role string) error
}

// Controller maneja /admin/users.
type Controller struct {
	Store UserStore
	Roles *authz.RoleResolver
}

// NewController crea el controller de admin.
func NewController(store UserStore, roles *authz.RoleResolver) *Controller {
	return &Controller{Store: store, Roles: roles}
}

type userItem struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListUsers responde GET /admin/users?limit=&offset=
func (c *Controller) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := c.Store.ListUsers(r.Context(), limit, offset)
	if err != nil {
		logger.From(r.Context()).Error("list users failed", logger.Err(err))
		errors.WriteError(w, errors.ErrInternalServerError)
		return
	}

	items := make([]userItem, 0, len(users))
	for _, u := range users {
		items = append(items, userItem{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt})
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"users": items})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole responde PUT /admin/users/{id}/role con body {"role": "admin"}.
// Invalida la entrada de rol cacheada del usuario afectado para que el
// cambio aplique en el próximo request y no al vencer el TTL.
func (c *Controller) SetRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		errors.WriteError(w, errors.ErrBadRequest.WithDetail("falta el id de usuario"))
		return
	}

	var req setRoleRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !core.ValidRole(req.Role) {
		errors.WriteError(w, errors.ErrBadRequest.WithDetail("rol desconocido: "+req.Role))
		return
	}

	if err := c.Store.SetUserRole(r.Context(), userID, req.Role); err != nil {
		switch {
		case stderrors.Is(err, core.ErrNotFound):
			errors.WriteError(w, errors.ErrNotFound.WithDetail("usuario inexistente"))
		case stderrors.Is(err, core.ErrInvalid):
			errors.WriteError(w, errors.ErrBadRequest.WithDetail("rol inválido"))
		default:
			logger.From(r.Context()).Error("set role failed", logger.UserID(userID), logger.Err(err))
			errors.WriteError(w, errors.ErrInternalServerError)
		}
		return
	}

	if c.Roles != nil {
		c.Roles.Invalidate(r.Context(), userID)
	}

	logger.From(r.Context()).Info("role updated",
		logger.UserID(userID),
		logger.Role(req.Role),
	)
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"id": userID, "role": req.Role})
}
