// Package lifecycle models the load state of a page: Idle, then Loading,
// then either Loaded or Failed.
//
// A Machine hands out a Ticket each time a load begins. Only the holder
// of the newest ticket may resolve the machine, so a slow response for a
// superseded load is dropped instead of overwriting newer state.
package lifecycle

import (
	"context"
	"errors"
	"sync"
)

// DefaultErrorMessage is shown when a failure carries no message.
const DefaultErrorMessage = "An error occurred"

// Status is the load status of a page.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// State is a snapshot of a page's view state.
type State[T any] struct {
	Status Status
	Data   T
	Err    string
	// Cause is the failure behind Err, kept for status mapping and logging.
	Cause error
}

// IsLoading reports whether the page is waiting for its data. An Idle
// page renders the same way.
func (s State[T]) IsLoading() bool { return s.Status == Idle || s.Status == Loading }

// IsFailed reports whether the load failed.
func (s State[T]) IsFailed() bool { return s.Status == Failed }

// IsLoaded reports whether the data arrived.
func (s State[T]) IsLoaded() bool { return s.Status == Loaded }

// Ticket identifies one load attempt.
type Ticket struct {
	gen uint64
}

// Machine holds the view state for one page. The zero value is Idle and
// ready to use.
type Machine[T any] struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State[T]
}

// Begin moves the machine to Loading and supersedes any load in flight.
// The returned context is canceled when a newer load begins; pass it to
// the fetch.
func (m *Machine[T]) Begin(ctx context.Context) (Ticket, context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	m.cancel = cancel

	var zero T
	m.state = State[T]{Status: Loading, Data: zero}
	return Ticket{gen: m.gen}, ctx
}

// Resolve records the outcome of the load identified by t. It reports
// false and changes nothing when t has been superseded.
func (m *Machine[T]) Resolve(t Ticket, data T, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.gen != m.gen || m.state.Status != Loading {
		return false
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if err != nil {
		var zero T
		m.state = State[T]{Status: Failed, Data: zero, Err: Message(err), Cause: err}
		return true
	}
	m.state = State[T]{Status: Loaded, Data: data}
	return true
}

// State returns a snapshot of the current view state.
func (m *Machine[T]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Load runs one full load on m: Begin, fetch, Resolve. It returns the
// state after the load, which is the newer state if the load was
// superseded while fetch ran.
func Load[T any](ctx context.Context, m *Machine[T], fetch func(context.Context) (T, error)) State[T] {
	ticket, ctx := m.Begin(ctx)
	data, err := fetch(ctx)
	m.Resolve(ticket, data, err)
	return m.State()
}

// Message returns the reader-facing text for err. Errors with a
// Message() string method supply their own text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var m interface{ Message() string }
	if errors.As(err, &m) {
		if msg := m.Message(); msg != "" {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}
