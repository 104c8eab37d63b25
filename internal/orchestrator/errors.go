package orchestrator

import "errors"

var (
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("orchestrator already started")

	// ErrNotStarted is returned when stopping or cancelling before Start.
	ErrNotStarted = errors.New("orchestrator not started")

	// ErrUnknownComponent is returned for a component name that is not registered.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrDuplicateComponent is returned when two components share a name.
	ErrDuplicateComponent = errors.New("duplicate component name")
)
