// Package migrations holds the schema fixtures for each supported engine.
// The schema belongs to the database; these files exist so tests and local
// environments can stand one up.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql
var FS embed.FS

// Apply executes every .sql file for dialect in name order. Each file is sent
// as one statement batch, so MySQL DSNs need multiStatements=true.
func Apply(ctx context.Context, db *sql.DB, dialect string) error {
	ents, err := fs.ReadDir(FS, dialect)
	if err != nil {
		return fmt.Errorf("no fixtures for %q: %w", dialect, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			files = append(files, path.Join(dialect, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := FS.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
	}
	return nil
}
