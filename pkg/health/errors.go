package health

import "errors"

// Sentinel errors for the health package. node.HealthChecks wraps the store
// pool ping and scheduler started-state probe as Checks; either one failing
// surfaces through these.
var (
	// ErrCheckFailed is returned when one or more health checks fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is returned when a health check exceeds its timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)
