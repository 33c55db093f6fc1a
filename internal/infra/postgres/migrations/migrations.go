package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the Postgres schema, applied by the migrate command and
// on server start.
var Migrations = migrate.NewMigrations()
