// Package storage opens the SQLite database shared by the message log, the
// text store and the registration store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
)

// MemoryPath opens a private in-memory database. Only useful in tests and
// one-shot CLI runs.
const MemoryPath = ":memory:"

// Open opens (and creates) the SQLite database at path in WAL mode.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path == MemoryPath {
		dsn = "file::memory:?_foreign_keys=on"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nsmserror.Wrap(err, "failed to create data directory").
				WithCode(nsmserror.CodeDatabaseError).
				WithOperation("storage.Open").
				WithDetail("path", path)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, Error(err, "storage.Open")
	}
	if path == MemoryPath {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, Error(err, "storage.Open")
	}
	return db, nil
}

// Migrate executes schema statements in order.
func Migrate(ctx context.Context, db *sql.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return Error(err, "storage.Migrate").WithDetail("statement", firstLine(stmt))
		}
	}
	return nil
}

// Error wraps a database error into a coded error. Unique constraint
// violations become DUPLICATE_ENTRY, sql.ErrNoRows becomes NOT_FOUND.
func Error(err error, operation string) *nsmserror.Error {
	code := nsmserror.CodeDatabaseError
	var sqliteErr sqlite3.Error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		code = nsmserror.CodeNotFound
	case errors.As(err, &sqliteErr) && (sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey):
		code = nsmserror.CodeDuplicateEntry
	}
	return nsmserror.Wrap(err, fmt.Sprintf("%s failed", operation)).
		WithCode(code).
		WithOperation(operation)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
