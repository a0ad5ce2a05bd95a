// Package session provides the debugger session facade: the
// connectivity and pause-state surface the variable inspection tree
// queries to decide whether live evaluation is currently possible.
//
// The wire protocol to a concrete debugger backend is owned by the IDE
// shell; this package only models the state the inspection core cares
// about.
package session

import "sync"

// State represents the current state of a debug session.
type State int

const (
	// StateDisconnected is the initial state before any adapter attaches.
	StateDisconnected State = iota
	// StateConnected is after a debug adapter has attached.
	StateConnected
	// StateRunning is when the debuggee is executing.
	StateRunning
	// StatePaused is when the debuggee is stopped and inspectable.
	StatePaused
	// StateTerminated is when the debuggee has exited.
	StateTerminated
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Handlers contains callbacks for session state events.
type Handlers struct {
	// OnStateChanged is called when the session state changes.
	OnStateChanged func(old, new State)
}

// Session tracks debugger connectivity. It is queried, never mutated, by
// the inspection core; the IDE shell drives its transitions from the
// debug adapter's events.
//
// Session is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	state State

	handlers   Handlers
	handlersMu sync.RWMutex
}

// New creates a session in the disconnected state.
func New() *Session {
	return &Session{state: StateDisconnected}
}

// SetHandlers sets the session event handlers.
func (s *Session) SetHandlers(handlers Handlers) {
	s.handlersMu.Lock()
	s.handlers = handlers
	s.handlersMu.Unlock()
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState transitions the session to the given state and notifies the
// state-change handler.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	old := s.state
	s.state = state
	s.mu.Unlock()

	if old == state {
		return
	}

	s.handlersMu.RLock()
	handler := s.handlers.OnStateChanged
	s.handlersMu.RUnlock()

	if handler != nil {
		handler(old, state)
	}
}

// Connect marks the session connected.
func (s *Session) Connect() { s.SetState(StateConnected) }

// Resume marks the debuggee running.
func (s *Session) Resume() { s.SetState(StateRunning) }

// Pause marks the debuggee stopped and inspectable.
func (s *Session) Pause() { s.SetState(StatePaused) }

// Terminate marks the debuggee exited.
func (s *Session) Terminate() { s.SetState(StateTerminated) }

// Disconnect marks the adapter detached.
func (s *Session) Disconnect() { s.SetState(StateDisconnected) }

// IsConnected returns true if a debug adapter is attached and the
// debuggee has not exited.
func (s *Session) IsConnected() bool {
	switch s.State() {
	case StateConnected, StateRunning, StatePaused:
		return true
	default:
		return false
	}
}

// IsPaused returns true if the debuggee is stopped.
func (s *Session) IsPaused() bool {
	return s.State() == StatePaused
}

// CanQuery returns true if live evaluation is currently meaningful: a
// connected adapter with a stopped debuggee.
func (s *Session) CanQuery() bool {
	return s.State() == StatePaused
}
