package message

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/internal/storage"
)

// Store defines the interface for message persistence
type Store interface {
	Save(ctx context.Context, msg *Message) error
	Get(ctx context.Context, id string) (*Message, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Query(ctx context.Context, filter Filter) ([]*Message, error)
	Backends(ctx context.Context) ([]string, error)
	Monthly(ctx context.Context, filter Filter) ([]MonthlyVolume, error)
	Daily(ctx context.Context, direction Direction, since time.Time) ([]DailyCount, error)
	StatusCounts(ctx context.Context, olderThan time.Time) (StatusCounts, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		backend TEXT NOT NULL,
		identity TEXT NOT NULL,
		direction TEXT NOT NULL,
		text TEXT NOT NULL,
		status TEXT NOT NULL,
		date DATETIME NOT NULL,
		in_response_to TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_date ON messages(date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_backend ON messages(backend)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_status_date ON messages(status, date)`,
}

// SQLiteStore implements Store using SQLite. Dates are stored in UTC so
// that the text prefix of the date column orders and groups by day and
// month.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates the messages table on db if needed.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if err := storage.Migrate(ctx, db, schema...); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts msg, filling in a missing ID and date.
func (s *SQLiteStore) Save(ctx context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Date.IsZero() {
		msg.Date = time.Now()
	}
	msg.Date = msg.Date.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, backend, identity, direction, text, status, date, in_response_to)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.Backend, msg.Identity, msg.Direction, msg.Text, msg.Status, msg.Date, nullable(msg.InResponseTo))
	if err != nil {
		return storage.Error(err, "message.Save").WithDetail("id", msg.ID)
	}
	return nil
}

// Get returns the message with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	msg, err := scanMessage(row)
	if err != nil {
		return nil, storage.Error(err, "message.Get").WithDetail("id", id)
	}
	return msg, nil
}

// UpdateStatus changes the status of a stored message.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE messages SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return storage.Error(err, "message.UpdateStatus")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nsmserror.New("message not found: " + id).
			WithCode(nsmserror.CodeNotFound).
			WithOperation("message.UpdateStatus")
	}
	return nil
}

const selectColumns = `SELECT id, backend, identity, direction, text, status, date, in_response_to FROM messages`

// Query returns messages matching filter, newest first.
func (s *SQLiteStore) Query(ctx context.Context, filter Filter) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := filter.where()
	query := selectColumns + where + ` ORDER BY date DESC, rowid DESC`

	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Error(err, "message.Query")
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, storage.Error(err, "message.Query")
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Error(err, "message.Query")
	}
	return msgs, nil
}

// Backends returns the distinct backend names seen so far.
func (s *SQLiteStore) Backends(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT backend FROM messages ORDER BY backend`)
	if err != nil {
		return nil, storage.Error(err, "message.Backends")
	}
	defer rows.Close()

	var backends []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, storage.Error(err, "message.Backends")
		}
		backends = append(backends, b)
	}
	return backends, rows.Err()
}

// Monthly returns incoming and outgoing volume per calendar month, oldest
// month first. Months without traffic in either direction are omitted.
func (s *SQLiteStore) Monthly(ctx context.Context, filter Filter) ([]MonthlyVolume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter.Direction = ""
	where, args := filter.where()
	if where == "" {
		where = " WHERE 1=1"
	}
	query := `SELECT substr(date, 1, 7) AS month, direction, COUNT(*) FROM messages` + where +
		` AND direction IN ('I', 'O') GROUP BY month, direction ORDER BY month`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Error(err, "message.Monthly")
	}
	defer rows.Close()

	var volumes []MonthlyVolume
	for rows.Next() {
		var (
			month     string
			direction Direction
			count     int
		)
		if err := rows.Scan(&month, &direction, &count); err != nil {
			return nil, storage.Error(err, "message.Monthly")
		}
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, storage.Error(err, "message.Monthly").WithDetail("month", month)
		}

		if n := len(volumes); n == 0 || !volumes[n-1].Month.Equal(start) {
			volumes = append(volumes, MonthlyVolume{Month: start})
		}
		v := &volumes[len(volumes)-1]
		if direction == Incoming {
			v.Incoming += count
		} else {
			v.Outgoing += count
		}
		v.Total += count
	}
	return volumes, rows.Err()
}

// Daily returns per-day counts of one direction since the given time.
func (s *SQLiteStore) Daily(ctx context.Context, direction Direction, since time.Time) ([]DailyCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(date, 1, 10) AS day, COUNT(*) FROM messages
		WHERE direction = ? AND date >= ?
		GROUP BY day ORDER BY day
	`, direction, since.UTC())
	if err != nil {
		return nil, storage.Error(err, "message.Daily")
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var (
			day   string
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, storage.Error(err, "message.Daily")
		}
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, storage.Error(err, "message.Daily").WithDetail("day", day)
		}
		counts = append(counts, DailyCount{Day: d, Count: count})
	}
	return counts, rows.Err()
}

// StatusCounts counts queued and failed messages dated at or before
// olderThan.
func (s *SQLiteStore) StatusCounts(ctx context.Context, olderThan time.Time) (StatusCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts StatusCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END)
		FROM messages WHERE date <= ?
	`, StatusQueued, StatusError, olderThan.UTC()).Scan(&counts.Unsent, &counts.Errored)
	if err != nil {
		return counts, storage.Error(err, "message.StatusCounts")
	}
	return counts, nil
}

// PingContext lets the store serve as a health check target.
func (s *SQLiteStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (f Filter) where() (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	if f.Backend != "" {
		clauses = append(clauses, "backend = ?")
		args = append(args, f.Backend)
	}
	if f.Direction != "" {
		clauses = append(clauses, "direction = ?")
		args = append(args, f.Direction)
	}
	if !f.Since.IsZero() {
		clauses = append(clauses, "date >= ?")
		args = append(args, f.Since.UTC())
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		clauses = append(clauses, `(text LIKE ? ESCAPE '\' OR identity LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row scanner) (*Message, error) {
	var (
		msg     Message
		replyTo sql.NullString
	)
	if err := row.Scan(&msg.ID, &msg.Backend, &msg.Identity, &msg.Direction, &msg.Text,
		&msg.Status, &msg.Date, &replyTo); err != nil {
		return nil, err
	}
	msg.InResponseTo = replyTo.String
	return &msg, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
