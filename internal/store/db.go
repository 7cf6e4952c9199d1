package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a chat table exists in none of the shards.
var ErrNotFound = errors.New("not found")

// DB wraps a read-only SQLite connection to one backup database file.
type DB struct {
	*sql.DB
	path string
}

// Open opens the database at path read-only and immutable, so the backup is
// never written and no journal files are created next to it. A missing file
// yields an error matching os.ErrNotExist.
func Open(ctx context.Context, path string) (*DB, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("open db: %s is a directory", path)
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Verify connection.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{DB: db, path: path}, nil
}

// Path returns the file the handle was opened on.
func (db *DB) Path() string {
	return db.path
}

func dsn(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "mode=ro&immutable=1"}
	return u.String()
}

// quoteIdent quotes a table name for interpolation into SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
