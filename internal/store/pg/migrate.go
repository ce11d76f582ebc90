package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/dropsaas/portal/internal/observability/logger"
)

// ApplyMigrations ejecuta los .sql embebidos en orden lexicográfico.
// Los scripts son idempotentes (IF NOT EXISTS / ON CONFLICT), así que
// correrlos de nuevo es seguro.
func (s *Store) ApplyMigrations(ctx context.Context, fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n := e.Name(); len(n) > 4 && n[len(n)-4:] == ".sql" {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	log := logger.Named("store.pg")
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		log.Info("migration applied", logger.String("file", name))
	}
	return nil
}
