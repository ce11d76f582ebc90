// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contiene las migraciones del esquema del portal.
//
//go:embed *.sql
var FS embed.FS
