package session

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/firmlab/firmlab/internal/model"
)

//go:embed schema.sql
var schemaSQL string

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is the durable Store implementation. SQLite runs in WAL mode
// with a single-writer connection pool so concurrent sessions never trip
// over SQLITE_BUSY.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteClock overrides the timestamp source.
func WithSQLiteClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) { s.now = now }
}

// OpenSQLite creates or opens the session database at path. Pragmas and
// schema are applied on every open; the call is idempotent.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a wider pool only produces
	// SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	store := &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

func (s *SQLiteStore) Create(ctx context.Context, sess *Session) error {
	firmware, err := json.Marshal(sess.Firmware)
	if err != nil {
		return fmt.Errorf("failed to marshal firmware: %w", err)
	}
	outcomes, err := json.Marshal(sess.Outcomes)
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}

	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, emulator_id, board_name, status, firmware, report_id, error, outcomes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.EmulatorID, sess.BoardName, string(sess.Status),
		string(firmware), sess.ReportID, sess.Error, string(outcomes),
		createdAt.Format(time.RFC3339Nano), createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, emulator_id, board_name, status, firmware, report_id, error, outcomes, created_at, updated_at
		FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, message, timestamp FROM session_logs
		WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read session logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry LogEntry
		var ts string
		if err := rows.Scan(&entry.Seq, &entry.Message, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entry.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log timestamp: %w", err)
		}
		sess.Logs = append(sess.Logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session logs: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) Update(ctx context.Context, sess *Session) error {
	firmware, err := json.Marshal(sess.Firmware)
	if err != nil {
		return fmt.Errorf("failed to marshal firmware: %w", err)
	}
	outcomes, err := json.Marshal(sess.Outcomes)
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET emulator_id = ?, board_name = ?, status = ?, firmware = ?,
		    report_id = ?, error = ?, outcomes = ?, updated_at = ?
		WHERE id = ?`,
		sess.EmulatorID, sess.BoardName, string(sess.Status), string(firmware),
		sess.ReportID, sess.Error, string(outcomes),
		s.now().Format(time.RFC3339Nano), sess.ID)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", sess.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update session %s: %w", sess.ID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) AppendLog(ctx context.Context, sessionID, message string) error {
	// COALESCE keeps seq strictly increasing per session without a
	// separate counter row.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO session_logs (session_id, seq, message, timestamp)
		SELECT id, COALESCE((SELECT MAX(seq) FROM session_logs WHERE session_id = ?), 0) + 1, ?, ?
		FROM sessions WHERE id = ?`,
		sessionID, message, s.now().Format(time.RFC3339Nano), sessionID)
	if err != nil {
		return fmt.Errorf("failed to append log to session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check append result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("append log to session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, emulator_id, board_name, status, firmware, report_id, error, outcomes, created_at, updated_at
		FROM sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var status, firmware, outcomes, createdAt, updatedAt string
	if err := row.Scan(&sess.ID, &sess.EmulatorID, &sess.BoardName, &status,
		&firmware, &sess.ReportID, &sess.Error, &outcomes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	sess.Status = model.SessionStatus(status)

	if err := json.Unmarshal([]byte(firmware), &sess.Firmware); err != nil {
		return nil, fmt.Errorf("failed to unmarshal firmware: %w", err)
	}
	if err := json.Unmarshal([]byte(outcomes), &sess.Outcomes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outcomes: %w", err)
	}

	var err error
	if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if sess.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &sess, nil
}
