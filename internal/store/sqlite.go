package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/taskdue/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// CreateReminder persists a newly scheduled reminder.
// If the reminder has no ID, a new UUID is generated.
func (s *SQLiteStore) CreateReminder(ctx context.Context, r model.Reminder) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, kind, task_id, user_id, title, due_date,
			fire_at, delivered, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Kind), r.TaskID, r.UserID, r.Title, r.DueDate,
		r.FireAt.UTC(), boolToInt(r.Delivered), r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating reminder for task %s: %w", r.TaskID, err)
	}

	return nil
}

// PendingReminders retrieves all undelivered reminders ordered by fire
// time ascending.
func (s *SQLiteStore) PendingReminders(ctx context.Context) ([]model.Reminder, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM reminders WHERE delivered = 0 ORDER BY fire_at ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}

	return reminders, rows.Err()
}

// MarkDelivered marks a single reminder as delivered.
func (s *SQLiteStore) MarkDelivered(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE reminders SET delivered = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking reminder %s as delivered: %w", id, err)
	}
	return nil
}

// PurgeDelivered removes delivered reminders older than the given
// number of days.
func (s *SQLiteStore) PurgeDelivered(ctx context.Context, olderThanDays int) error {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays).UTC()
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM reminders WHERE delivered = 1 AND fire_at < ?", cutoff,
	)
	if err != nil {
		return fmt.Errorf("purging delivered reminders: %w", err)
	}
	return nil
}

// scanReminder scans a reminder row from a sqlx.Rows result set.
func scanReminder(rows *sqlx.Rows) (model.Reminder, error) {
	var (
		r         model.Reminder
		kind      string
		delivered int
		fireAt    time.Time
		createdAt time.Time
	)

	err := rows.Scan(
		&r.ID, &kind, &r.TaskID, &r.UserID, &r.Title, &r.DueDate,
		&fireAt, &delivered, &createdAt,
	)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("scanning reminder row: %w", err)
	}

	r.Kind = model.ReminderKind(kind)
	r.Delivered = delivered != 0
	r.FireAt = fireAt
	r.CreatedAt = createdAt

	return r, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
