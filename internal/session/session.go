// Package session tracks verification sessions from firmware upload to
// report. A session owns its ordered log stream and its outcome list;
// both grow append-only while the session is running.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/firmlab/firmlab/internal/model"
)

// ErrNotFound is returned when a session ID is unknown to the store.
var ErrNotFound = errors.New("session not found")

// LogEntry is one line in a session's ordered log stream. Seq is assigned
// by the store and strictly increases within a session.
type LogEntry struct {
	Seq       int       `json:"seq"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one verification run: uploaded firmware, the emulator config
// it ran against, and everything the run produced.
type Session struct {
	ID         string              `json:"session_id"`
	EmulatorID string              `json:"emulator_id"`
	BoardName  string              `json:"board_name"`
	Status     model.SessionStatus `json:"status"`
	Firmware   model.FirmwareInfo  `json:"firmware"`
	ReportID   string              `json:"report_id,omitempty"`
	Error      string              `json:"error,omitempty"`
	Outcomes   []model.TestOutcome `json:"outcomes,omitempty"`
	Logs       []LogEntry          `json:"logs,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Store persists sessions. Implementations are safe for concurrent use
// across sessions; within one session the pipeline writes sequentially.
type Store interface {
	// Create registers a new session. The caller assigns the ID.
	Create(ctx context.Context, s *Session) error

	// Get returns the session with the given ID, logs included, or
	// ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Update replaces the session's mutable fields (status, firmware,
	// report reference, error, outcomes). Logs are managed through
	// AppendLog only.
	Update(ctx context.Context, s *Session) error

	// AppendLog appends one line to the session's log stream.
	AppendLog(ctx context.Context, sessionID, message string) error

	// List returns all sessions ordered by creation time, logs omitted.
	List(ctx context.Context) ([]*Session, error)

	// Close releases the store's resources.
	Close() error
}
