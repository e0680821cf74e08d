package text

import (
	"context"
	"database/sql"
	"sync"
	"time"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/internal/storage"
)

// SystemUser is recorded as author of texts created from defaults.
const SystemUser = "system"

// Text is an editable reply text for one slug and locale.
type Text struct {
	Slug       string    `json:"slug" yaml:"slug"`
	Locale     string    `json:"locale" yaml:"locale"`
	Text       string    `json:"text" yaml:"text"`
	CreatedBy  string    `json:"created_by" yaml:"created_by"`
	ModifiedBy string    `json:"modified_by" yaml:"modified_by"`
	CreatedOn  time.Time `json:"created_on" yaml:"created_on"`
	ModifiedOn time.Time `json:"modified_on" yaml:"modified_on"`
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS texts (
		slug TEXT NOT NULL,
		locale TEXT NOT NULL,
		text TEXT NOT NULL,
		created_by TEXT NOT NULL,
		modified_by TEXT NOT NULL,
		created_on DATETIME NOT NULL,
		modified_on DATETIME NOT NULL,
		PRIMARY KEY (slug, locale)
	)`,
}

// Store persists reply texts in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates the texts table on db if needed.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := storage.Migrate(ctx, db, schema...); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Get returns the text of slug in locale.
func (s *Store) Get(ctx context.Context, slug, locale string) (*Text, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t Text
	err := s.db.QueryRowContext(ctx, `
		SELECT slug, locale, text, created_by, modified_by, created_on, modified_on
		FROM texts WHERE slug = ? AND locale = ?
	`, slug, locale).Scan(&t.Slug, &t.Locale, &t.Text, &t.CreatedBy, &t.ModifiedBy, &t.CreatedOn, &t.ModifiedOn)
	if err != nil {
		return nil, storage.Error(err, "text.Get").WithDetail("slug", slug).WithDetail("locale", locale)
	}
	return &t, nil
}

// Create inserts a new text. An existing slug/locale pair is a
// DUPLICATE_ENTRY error.
func (s *Store) Create(ctx context.Context, t *Text) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t.CreatedOn, t.ModifiedOn = now, now
	if t.ModifiedBy == "" {
		t.ModifiedBy = t.CreatedBy
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO texts (slug, locale, text, created_by, modified_by, created_on, modified_on)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.Slug, t.Locale, t.Text, t.CreatedBy, t.ModifiedBy, t.CreatedOn, t.ModifiedOn)
	if err != nil {
		return storage.Error(err, "text.Create").WithDetail("slug", t.Slug)
	}
	return nil
}

// Put sets the text of slug in locale on behalf of user, creating the row
// if needed.
func (s *Store) Put(ctx context.Context, slug, locale, text, user string) error {
	if slug == "" || locale == "" {
		return nsmserror.New("slug and locale are required").
			WithCode(nsmserror.CodeInvalidInput).
			WithOperation("text.Put")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO texts (slug, locale, text, created_by, modified_by, created_on, modified_on)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug, locale) DO UPDATE SET
			text = excluded.text,
			modified_by = excluded.modified_by,
			modified_on = excluded.modified_on
	`, slug, locale, text, user, user, now, now)
	if err != nil {
		return storage.Error(err, "text.Put").WithDetail("slug", slug)
	}
	return nil
}

// List returns all texts ordered by slug and locale. An empty locale lists
// every locale.
func (s *Store) List(ctx context.Context, locale string) ([]*Text, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT slug, locale, text, created_by, modified_by, created_on, modified_on FROM texts`
	var args []interface{}
	if locale != "" {
		query += ` WHERE locale = ?`
		args = append(args, locale)
	}
	query += ` ORDER BY slug, locale`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Error(err, "text.List")
	}
	defer rows.Close()

	var texts []*Text
	for rows.Next() {
		var t Text
		if err := rows.Scan(&t.Slug, &t.Locale, &t.Text, &t.CreatedBy, &t.ModifiedBy, &t.CreatedOn, &t.ModifiedOn); err != nil {
			return nil, storage.Error(err, "text.List")
		}
		texts = append(texts, &t)
	}
	return texts, rows.Err()
}
