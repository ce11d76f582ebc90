// Package authz resuelve el rol de autorización de un principal.
package authz

import (
	"context"
	"errors"
	"time"

	"github.com/dropsaas/portal/internal/cache"
	"github.com/dropsaas/portal/internal/observability/logger"
	"github.com/dropsaas/portal/internal/store/core"
)

// RoleStore es la consulta mínima que necesita el resolver.
// *pg.Store la implementa; los tests inyectan un stub.
type RoleStore interface {
	GetUserRole(ctx context.Context, userID string) (string, error)
}

// RoleResolver busca el rol de un principal en el store, con cache al frente.
//
// Política fail-closed: cualquier error de lookup o ausencia de fila
// resuelve a rol vacío (Absent), nunca a un rol por defecto. El caller
// trata Absent como "sin privilegio".
type RoleResolver struct {
	store RoleStore
	cache cache.Client
	ttl   time.Duration
}

// NewRoleResolver crea el resolver. cache puede ser nil (sin cache).
func NewRoleResolver(store RoleStore, c cache.Client, ttl time.Duration) *RoleResolver {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RoleResolver{store: store, cache: c, ttl: ttl}
}

func cacheKey(principalID string) string { return "role:" + principalID }

// Resolve devuelve el rol del principal, o "" si no resuelve.
// El error acompaña al "" solo para que el caller pueda loguearlo;
// la decisión de autorización sale del rol, no del error.
func (r *RoleResolver) Resolve(ctx context.Context, principalID string) (string, error) {
	if principalID == "" {
		return "", nil
	}

	if r.cache != nil {
		if v, err := r.cache.Get(ctx, cacheKey(principalID)); err == nil {
			return v, nil
		} else if !cache.IsNotFound(err) {
			// Cache caído no es fatal: seguimos al store.
			logger.From(ctx).Debug("role cache get failed", logger.Err(err))
		}
	}

	role, err := r.store.GetUserRole(ctx, principalID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Sin fila de rol: Absent, cacheable como vacío.
			r.cacheSet(ctx, principalID, "")
			return "", nil
		}
		return "", err
	}

	r.cacheSet(ctx, principalID, role)
	return role, nil
}

// Invalidate borra la entrada cacheada del principal.
// Se llama al cambiar el rol y en el logout.
func (r *RoleResolver) Invalidate(ctx context.Context, principalID string) {
	if r.cache == nil || principalID == "" {
		return
	}
	if err := r.cache.Delete(ctx, cacheKey(principalID)); err != nil {
		logger.From(ctx).Debug("role cache delete failed", logger.Err(err))
	}
}

func (r *RoleResolver) cacheSet(ctx context.Context, principalID, role string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(principalID), role, r.ttl); err != nil {
		logger.From(ctx).Debug("role cache set failed", logger.Err(err))
	}
}

// IsAdmin es el predicado que usa el gate de admin.
func IsAdmin(role string) bool { return role == core.RoleAdmin }
