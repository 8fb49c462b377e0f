package migrations

import "embed"

// MigrationFiles holds one directory of goose migrations per store dialect.
//
//go:embed postgres/*.sql sqlite3/*.sql mysql/*.sql
var MigrationFiles embed.FS
