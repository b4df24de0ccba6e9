package registry

import "errors"

var (
	// ErrAlreadyRegistered is returned when an (action, queue) pair is
	// registered more than once, mirroring ActionHandlers.add_action_handler's
	// duplicate check.
	ErrAlreadyRegistered = errors.New("registry: action already registered for queue")

	// ErrNotRegistered is returned when no handler matches an (action, queue) pair.
	ErrNotRegistered = errors.New("registry: no handler registered for action and queue")
)
