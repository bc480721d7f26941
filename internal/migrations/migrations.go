// Package migrations holds the users schema for every supported SQL dialect.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-management/internal/logger"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

// dirs maps a database/sql driver name to its migrations directory.
var dirs = map[string]string{
	"pgx":   "postgres",
	"mysql": "mysql",
}

// Apply executes every migration of the dialect matching driver in file
// name order. Statements are idempotent.
func Apply(ctx context.Context, db *sqlx.DB, driver string) error {
	dir, ok := dirs[driver]
	if !ok {
		return fmt.Errorf("no migrations for driver %q", driver)
	}

	names, err := fs.Glob(files, path.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		stmt, err := files.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		logger.Log.Infow("migration applied", "file", name)
	}
	return nil
}
