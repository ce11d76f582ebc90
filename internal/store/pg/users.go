package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dropsaas/portal/internal/store/core"
)

// ---------- LECTURAS ----------

// GetUserRole devuelve el nombre del rol del usuario (proyección tipada del
// join app_user → app_role). core.ErrNotFound si el usuario no existe o no
// tiene rol asignado; el caller decide qué significa la ausencia.
func (s *Store) GetUserRole(ctx context.Context, userID string) (string, error) {
	const q = `
SELECT r.name
FROM app_user u
JOIN app_role r ON r.id = u.role_id
WHERE u.id = $1;`
	var role string
	err := s.pool.QueryRow(ctx, q, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", core.ErrNotFound
		}
		return "", err
	}
	return role, nil
}

// ListUsers devuelve usuarios con su rol, paginado.
func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]core.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const q = `
SELECT u.id, u.email, COALESCE(r.name, ''), u.created_at
FROM app_user u
LEFT JOIN app_role r ON r.id = u.role_id
ORDER BY u.created_at, u.id
LIMIT $1 OFFSET $2;`
	rows, err := s.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ---------- ESCRITURAS ----------

// SetUserRole asigna un rol (por nombre) al usuario.
// core.ErrInvalid si el rol no existe, core.ErrNotFound si el usuario no existe.
func (s *Store) SetUserRole(ctx context.Context, userID, role string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return core.ErrInvalid
	}

	var roleID string
	err := s.pool.QueryRow(ctx, `SELECT id FROM app_role WHERE name = $1`, role).Scan(&roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ErrInvalid
		}
		return err
	}

	tag, err := s.pool.Exec(ctx, `UPDATE app_user SET role_id = $1 WHERE id = $2`, roleID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// EnsureUser inserta el usuario si no existe (primer login vía proveedor).
// Idempotente; el rol por defecto queda en "user".
func (s *Store) EnsureUser(ctx context.Context, userID, email string) error {
	const q = `
INSERT INTO app_user (id, email, role_id)
VALUES ($1, $2, (SELECT id FROM app_role WHERE name = 'user'))
ON CONFLICT (id) DO NOTHING;`
	_, err := s.pool.Exec(ctx, q, userID, email)
	return err
}
