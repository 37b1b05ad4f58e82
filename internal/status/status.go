package status

import "time"

// Severity classifies a status event for the consumer.
type Severity int

const (
	Info Severity = iota
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Event is one append-only status line emitted during a run.
type Event struct {
	Timestamp time.Time
	Message   string
	Severity  Severity
}

// Sink receives status events. Implementations must not block the caller.
type Sink interface {
	Emit(e Event)
}

// Func adapts a plain function to a Sink.
type Func func(e Event)

func (f Func) Emit(e Event) { f(e) }

// Channel is a buffered, drop-on-full event sink. The engine emits into it
// without ever blocking; a slow or absent consumer loses the oldest-unread
// tail rather than stalling the workflow.
type Channel struct {
	ch chan Event
}

// NewChannel creates a channel sink with the given buffer capacity.
func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = 256
	}
	return &Channel{ch: make(chan Event, capacity)}
}

func (c *Channel) Emit(e Event) {
	select {
	case c.ch <- e:
	default:
	}
}

// Events returns the receive side for the consumer.
func (c *Channel) Events() <-chan Event {
	return c.ch
}

// Close closes the receive side. Only the producer may call it, after the
// last Emit.
func (c *Channel) Close() {
	close(c.ch)
}

// Infof is a convenience for emitting an informational event now.
func Infof(s Sink, msg string) {
	s.Emit(Event{Timestamp: time.Now(), Message: msg, Severity: Info})
}

// Warnf emits a warning event now.
func Warnf(s Sink, msg string) {
	s.Emit(Event{Timestamp: time.Now(), Message: msg, Severity: Warn})
}

// Errorf emits an error event now.
func Errorf(s Sink, msg string) {
	s.Emit(Event{Timestamp: time.Now(), Message: msg, Severity: Error})
}
