package session

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnected, "connected"},
		{StateRunning, "running"},
		{StatePaused, "paused"},
		{StateTerminated, "terminated"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if tt.state.String() != tt.expected {
				t.Errorf("String() = %s, expected %s", tt.state.String(), tt.expected)
			}
		})
	}
}

func TestSession_InitialState(t *testing.T) {
	s := New()

	if s.State() != StateDisconnected {
		t.Errorf("State() = %v, expected StateDisconnected", s.State())
	}
	if s.IsConnected() {
		t.Error("new session should not be connected")
	}
	if s.IsPaused() || s.CanQuery() {
		t.Error("new session should not be queryable")
	}
}

func TestSession_Queryability(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		connected bool
		paused    bool
		canQuery  bool
	}{
		{"disconnected", StateDisconnected, false, false, false},
		{"connected", StateConnected, true, false, false},
		{"running", StateRunning, true, false, false},
		{"paused", StatePaused, true, true, true},
		{"terminated", StateTerminated, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.SetState(tt.state)

			if s.IsConnected() != tt.connected {
				t.Errorf("IsConnected() = %v, expected %v", s.IsConnected(), tt.connected)
			}
			if s.IsPaused() != tt.paused {
				t.Errorf("IsPaused() = %v, expected %v", s.IsPaused(), tt.paused)
			}
			if s.CanQuery() != tt.canQuery {
				t.Errorf("CanQuery() = %v, expected %v", s.CanQuery(), tt.canQuery)
			}
		})
	}
}

func TestSession_Transitions(t *testing.T) {
	s := New()

	s.Connect()
	if s.State() != StateConnected {
		t.Errorf("State() = %v after Connect, expected StateConnected", s.State())
	}

	s.Resume()
	if s.State() != StateRunning {
		t.Errorf("State() = %v after Resume, expected StateRunning", s.State())
	}

	s.Pause()
	if !s.CanQuery() {
		t.Error("session should be queryable after Pause")
	}

	s.Terminate()
	if s.State() != StateTerminated {
		t.Errorf("State() = %v after Terminate, expected StateTerminated", s.State())
	}

	s.Disconnect()
	if s.State() != StateDisconnected {
		t.Errorf("State() = %v after Disconnect, expected StateDisconnected", s.State())
	}
}

func TestSession_StateChangeHandler(t *testing.T) {
	s := New()

	var transitions [][2]State
	s.SetHandlers(Handlers{
		OnStateChanged: func(old, new State) {
			transitions = append(transitions, [2]State{old, new})
		},
	})

	s.Connect()
	s.Pause()

	if len(transitions) != 2 {
		t.Fatalf("handler fired %d times, expected 2", len(transitions))
	}
	if transitions[0] != [2]State{StateDisconnected, StateConnected} {
		t.Errorf("first transition = %v, expected disconnected -> connected", transitions[0])
	}
	if transitions[1] != [2]State{StateConnected, StatePaused} {
		t.Errorf("second transition = %v, expected connected -> paused", transitions[1])
	}
}

func TestSession_NoHandlerOnSameState(t *testing.T) {
	s := New()
	s.Connect()

	fired := 0
	s.SetHandlers(Handlers{
		OnStateChanged: func(old, new State) { fired++ },
	})

	s.Connect()
	if fired != 0 {
		t.Errorf("handler fired %d times on a same-state transition, expected 0", fired)
	}
}
