// Package registration stores the people who registered by SMS and the case
// reports they send.
package registration

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"time"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/internal/storage"
)

// NoReminder marks a registration without a daily reminder.
const NoReminder = -1

// Registration is one registered sender.
type Registration struct {
	ID           int64     `json:"id" yaml:"id"`
	Identity     string    `json:"identity" yaml:"identity"`
	FirstName    string    `json:"first_name" yaml:"first_name"`
	LastName     string    `json:"last_name" yaml:"last_name"`
	BirthDate    time.Time `json:"birth_date" yaml:"birth_date"`
	Phone        string    `json:"phone" yaml:"phone"`
	ReminderHour int       `json:"reminder_hour" yaml:"reminder_hour"`
	CreatedOn    time.Time `json:"created_on" yaml:"created_on"`
}

// Report is a number of cases reported by a registered sender.
type Report struct {
	ID          int64     `json:"id" yaml:"id"`
	Identity    string    `json:"identity" yaml:"identity"`
	Count       int       `json:"count" yaml:"count"`
	Description string    `json:"description" yaml:"description"`
	CreatedOn   time.Time `json:"created_on" yaml:"created_on"`
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS registrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		identity TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		birth_date DATE NOT NULL,
		phone TEXT NOT NULL,
		reminder_hour INTEGER NOT NULL DEFAULT -1,
		created_on DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		identity TEXT NOT NULL REFERENCES registrations(identity),
		count INTEGER NOT NULL,
		description TEXT NOT NULL,
		created_on DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_identity ON reports(identity, created_on)`,
}

// Store persists registrations and reports in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates the tables on db if needed.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := storage.Migrate(ctx, db, schema...); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save inserts r or, if the identity is already registered, replaces its
// name, birth date and phone. New registrations start without a reminder;
// the reminder hour and creation date of an existing registration are kept.
// r is refreshed from the stored row.
func (s *Store) Save(ctx context.Context, r *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations (identity, first_name, last_name, birth_date, phone, reminder_hour, created_on)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (identity) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			birth_date = excluded.birth_date,
			phone = excluded.phone
	`, r.Identity, r.FirstName, r.LastName, r.BirthDate.UTC(), r.Phone, NoReminder, time.Now().UTC())
	if err != nil {
		return storage.Error(err, "registration.Save").WithDetail("identity", r.Identity)
	}

	err = s.db.QueryRowContext(ctx, `SELECT id, reminder_hour, created_on FROM registrations WHERE identity = ?`, r.Identity).
		Scan(&r.ID, &r.ReminderHour, &r.CreatedOn)
	if err != nil {
		return storage.Error(err, "registration.Save").WithDetail("identity", r.Identity)
	}
	return nil
}

const selectRegistration = `SELECT id, identity, first_name, last_name, birth_date, phone, reminder_hour, created_on FROM registrations`

// Get returns the registration of identity.
func (s *Store) Get(ctx context.Context, identity string) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r Registration
	err := s.db.QueryRowContext(ctx, selectRegistration+` WHERE identity = ?`, identity).
		Scan(&r.ID, &r.Identity, &r.FirstName, &r.LastName, &r.BirthDate, &r.Phone, &r.ReminderHour, &r.CreatedOn)
	if err != nil {
		return nil, storage.Error(err, "registration.Get").WithDetail("identity", identity)
	}
	return &r, nil
}

// SetReminderHour sets the daily reminder hour (0-23) or clears it with
// NoReminder.
func (s *Store) SetReminderHour(ctx context.Context, identity string, hour int) error {
	if hour != NoReminder && (hour < 0 || hour > 23) {
		return nsmserror.InvalidField("hour", strconv.Itoa(hour), "remind.invalid_hour").
			WithOperation("registration.SetReminderHour")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE registrations SET reminder_hour = ? WHERE identity = ?`, hour, identity)
	if err != nil {
		return storage.Error(err, "registration.SetReminderHour")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nsmserror.New("not registered: " + identity).
			WithCode(nsmserror.CodeNotFound).
			WithOperation("registration.SetReminderHour")
	}
	return nil
}

// List returns all registrations, oldest first.
func (s *Store) List(ctx context.Context) ([]*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectRegistration+` ORDER BY id`)
	if err != nil {
		return nil, storage.Error(err, "registration.List")
	}
	defer rows.Close()

	var regs []*Registration
	for rows.Next() {
		var r Registration
		if err := rows.Scan(&r.ID, &r.Identity, &r.FirstName, &r.LastName, &r.BirthDate, &r.Phone, &r.ReminderHour, &r.CreatedOn); err != nil {
			return nil, storage.Error(err, "registration.List")
		}
		regs = append(regs, &r)
	}
	return regs, rows.Err()
}

// AddReport records a case report. The sender must be registered.
func (s *Store) AddReport(ctx context.Context, rep *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rep.CreatedOn.IsZero() {
		rep.CreatedOn = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (identity, count, description, created_on)
		SELECT ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM registrations WHERE identity = ?)
	`, rep.Identity, rep.Count, rep.Description, rep.CreatedOn, rep.Identity)
	if err != nil {
		return storage.Error(err, "registration.AddReport")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nsmserror.New("not registered: " + rep.Identity).
			WithCode(nsmserror.CodeNotFound).
			WithOperation("registration.AddReport")
	}
	rep.ID, _ = res.LastInsertId()
	return nil
}

// Reports returns the reports of identity, oldest first.
func (s *Store) Reports(ctx context.Context, identity string) ([]*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identity, count, description, created_on FROM reports
		WHERE identity = ? ORDER BY created_on, id
	`, identity)
	if err != nil {
		return nil, storage.Error(err, "registration.Reports")
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.Identity, &r.Count, &r.Description, &r.CreatedOn); err != nil {
			return nil, storage.Error(err, "registration.Reports")
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}
