package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
)

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nsms.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestMigrateAndErrors(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	err = Migrate(ctx, db,
		`CREATE TABLE items (slug TEXT PRIMARY KEY)`,
		`CREATE INDEX IF NOT EXISTS idx_items_slug ON items(slug)`,
	)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO items (slug) VALUES ('a')`); err != nil {
		t.Fatal(err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO items (slug) VALUES ('a')`)
	if got := Error(err, "items.Insert"); got.Code() != nsmserror.CodeDuplicateEntry {
		t.Errorf("duplicate insert code = %v, want DUPLICATE_ENTRY", got.Code())
	}

	var slug string
	err = db.QueryRowContext(ctx, `SELECT slug FROM items WHERE slug = 'b'`).Scan(&slug)
	if got := Error(err, "items.Get"); got.Code() != nsmserror.CodeNotFound || got.Operation() != "items.Get" {
		t.Errorf("missing row = %v/%v", got.Code(), got.Operation())
	}
	if !nsmserror.HasCode(Error(sql.ErrConnDone, "x"), nsmserror.CodeDatabaseError) {
		t.Error("generic error should map to DATABASE_ERROR")
	}

	err = Migrate(ctx, db, "CREATE TABLE broken (\n")
	if !nsmserror.HasCode(err, nsmserror.CodeDatabaseError) {
		t.Errorf("Migrate() of bad SQL = %v", err)
	}
}
