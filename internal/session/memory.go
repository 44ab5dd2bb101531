package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions in process memory. It backs tests and
// single-shot CLI runs where durability across processes is not needed.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the timestamp source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) { m.now = now }
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]*Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	stored := cloneSession(s)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now()
	}
	stored.UpdatedAt = stored.CreatedAt
	m.sessions[s.ID] = stored
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	return cloneSession(stored), nil
}

func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions[s.ID]
	if !ok {
		return fmt.Errorf("update session %s: %w", s.ID, ErrNotFound)
	}
	next := cloneSession(s)
	next.Logs = stored.Logs
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = m.now()
	m.sessions[s.ID] = next
	return nil
}

func (m *MemoryStore) AppendLog(_ context.Context, sessionID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("append log to session %s: %w", sessionID, ErrNotFound)
	}
	stored.Logs = append(stored.Logs, LogEntry{
		Seq:       len(stored.Logs) + 1,
		Message:   message,
		Timestamp: m.now(),
	})
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, stored := range m.sessions {
		s := cloneSession(stored)
		s.Logs = nil
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

func cloneSession(s *Session) *Session {
	clone := *s
	clone.Outcomes = append(clone.Outcomes[:0:0], s.Outcomes...)
	clone.Logs = append(clone.Logs[:0:0], s.Logs...)
	return &clone
}
