package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BackupDatabase writes a consistent snapshot of the database into dir
// using VACUUM INTO and returns the backup file path. The snapshot is
// transactionally consistent even with concurrent writers.
func BackupDatabase(ctx context.Context, db *sql.DB, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("inventra-%s.sqlite3", time.Now().Format("20060102-150405")))

	// VACUUM INTO fails if the target exists.
	if _, err := os.Stat(path); err == nil {
		return "", conflictf("backup %q already exists", path)
	}

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	return path, nil
}
