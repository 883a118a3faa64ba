package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// RewriteDatabase runs stmts against a copy of the database image data and
// returns the resulting image. It edits rows the way an outside tool would,
// bypassing the store's validation.
func RewriteDatabase(data []byte, stmts ...string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "shreejida-rewrite-")
	if err != nil {
		return nil, fmt.Errorf("rewrite database: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "db.sqlite")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("rewrite database: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("rewrite database: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("rewrite database: %q: %w", stmt, err)
		}
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("rewrite database: %w", err)
	}
	return os.ReadFile(path)
}
