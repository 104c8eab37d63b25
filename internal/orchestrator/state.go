package orchestrator

import "sync"

// State is a component's lifecycle state.
type State int

const (
	// StatePending indicates the component has not been started.
	StatePending State = iota
	// StateRunning indicates the component's loop is active.
	StateRunning
	// StateCancelling indicates cancellation was signalled and the
	// component has not returned yet.
	StateCancelling
	// StateStopped indicates the component has returned. It is terminal.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCancelling:
		return "cancelling"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StateMachine guards a component's state transitions. It is safe for
// concurrent use.
type StateMachine struct {
	mu          sync.Mutex
	current     State
	transitions map[State][]State
	onEnter     map[State]func(from State)
}

// NewStateMachine creates a state machine in StatePending.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StatePending,
		transitions: map[State][]State{
			StatePending:    {StateRunning},
			StateRunning:    {StateCancelling, StateStopped},
			StateCancelling: {StateStopped},
		},
		onEnter: make(map[State]func(State)),
	}
}

// Transition moves to the given state if the transition is valid and
// reports whether it happened.
func (sm *StateMachine) Transition(to State) bool {
	sm.mu.Lock()
	from := sm.current
	valid := false
	for _, state := range sm.transitions[from] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		sm.mu.Unlock()
		return false
	}
	sm.current = to
	enterFn := sm.onEnter[to]
	sm.mu.Unlock()

	if enterFn != nil {
		enterFn(from)
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() State {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.current
}

// OnEnter registers a callback run after entering state.
func (sm *StateMachine) OnEnter(state State, fn func(from State)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onEnter[state] = fn
}
