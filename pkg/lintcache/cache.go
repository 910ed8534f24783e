// Package lintcache stores lint results in a SQLite database so unchanged
// files are not re-validated on every run. Entries are keyed by file path
// and invalidated by size and modification time.
package lintcache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/skilletlabs/skillet/pkg/skill"
)

const schema = `
CREATE TABLE IF NOT EXISTS lint_results (
	path       TEXT PRIMARY KEY,
	size       INTEGER NOT NULL,
	mtime_ns   INTEGER NOT NULL,
	violations TEXT NOT NULL,
	checked_at INTEGER NOT NULL
);
`

// Cache is a SQLite-backed lint result cache.
type Cache struct {
	db *sqlx.DB
}

// DefaultPath returns the default cache database location.
func DefaultPath() (string, error) {
	if basePath := os.Getenv("SKILLET_BASE_PATH"); basePath != "" {
		return filepath.Join(basePath, "lint.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".skillet", "lint.db"), nil
}

// Open opens or creates the cache database at the given path.
func Open(ctx context.Context, dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create cache directory")
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cache database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping cache database")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create cache schema")
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

type row struct {
	Path       string `db:"path"`
	Size       int64  `db:"size"`
	MtimeNS    int64  `db:"mtime_ns"`
	Violations string `db:"violations"`
	CheckedAt  int64  `db:"checked_at"`
}

// Get returns the cached violations for a file if size and mtime still
// match.
func (c *Cache) Get(path string, size int64, mtimeNS int64) ([]skill.Violation, bool) {
	var r row
	err := c.db.Get(&r,
		"SELECT path, size, mtime_ns, violations, checked_at FROM lint_results WHERE path = ? AND size = ? AND mtime_ns = ?",
		path, size, mtimeNS)
	if err != nil {
		return nil, false
	}

	var violations []skill.Violation
	if err := json.Unmarshal([]byte(r.Violations), &violations); err != nil {
		return nil, false
	}
	return violations, true
}

// Put stores the violations for a file, replacing any previous entry.
func (c *Cache) Put(path string, size int64, mtimeNS int64, violations []skill.Violation) error {
	if violations == nil {
		violations = []skill.Violation{}
	}
	encoded, err := json.Marshal(violations)
	if err != nil {
		return errors.Wrap(err, "failed to encode violations")
	}

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO lint_results (path, size, mtime_ns, violations, checked_at) VALUES (?, ?, ?, ?, ?)",
		path, size, mtimeNS, string(encoded), time.Now().Unix())
	return errors.Wrap(err, "failed to store lint result")
}

// Prune removes entries older than the given age.
func (c *Cache) Prune(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).Unix()
	res, err := c.db.Exec("DELETE FROM lint_results WHERE checked_at < ?", cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prune cache")
	}
	return res.RowsAffected()
}
