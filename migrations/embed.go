// Package migrations holds the Postgres schema of the loop store.
package migrations

import "embed"

// FS is handed to goose.NewProvider by repo.Migrate and by the migration
// test, so the binary never reads migrations from disk.
//
//go:embed *.sql
var FS embed.FS
