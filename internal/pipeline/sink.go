package pipeline

import (
	"sync"
	"time"
)

// EventKind discriminates sink events.
type EventKind string

const (
	// EventProgress marks the start of a pipeline phase.
	EventProgress EventKind = "progress"
	// EventLog carries one session log line.
	EventLog EventKind = "log"
)

// Event is one observation delivered to sinks. Progress events carry
// Phase/Step/Total; log events carry Message.
type Event struct {
	SessionID string    `json:"session_id"`
	Kind      EventKind `json:"kind"`
	Phase     string    `json:"phase,omitempty"`
	Step      int       `json:"step,omitempty"`
	Total     int       `json:"total,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives pipeline events. Delivery is best-effort: a sink error is
// logged by the orchestrator and never fails the session.
type Sink interface {
	Emit(event Event) error
}

// SyncSink delivers events inline on the pipeline goroutine.
type SyncSink struct {
	fn func(Event) error
}

// NewSyncSink wraps fn as a Sink.
func NewSyncSink(fn func(Event) error) *SyncSink {
	return &SyncSink{fn: fn}
}

func (s *SyncSink) Emit(event Event) error {
	return s.fn(event)
}

// AsyncSink decouples event delivery from the pipeline: Emit enqueues and
// returns immediately, a single goroutine drains the queue into the inner
// sink. When the queue is full the event is dropped rather than blocking
// test execution. Close stops intake and waits for the drain to finish.
type AsyncSink struct {
	inner Sink
	ch    chan Event
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewAsyncSink starts the drain goroutine with the given queue capacity.
func NewAsyncSink(inner Sink, buffer int) *AsyncSink {
	if buffer <= 0 {
		buffer = 64
	}
	a := &AsyncSink{
		inner: inner,
		ch:    make(chan Event, buffer),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(a.done)
		for event := range a.ch {
			// Inner sink errors are already best-effort by contract.
			_ = a.inner.Emit(event)
		}
	}()
	return a
}

func (a *AsyncSink) Emit(event Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	select {
	case a.ch <- event:
	default:
	}
	return nil
}

// Close stops accepting events and waits until queued ones are delivered.
func (a *AsyncSink) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()
	<-a.done
}
