// Package registry maps (action, queue) pairs to the handlers that process
// them, the way original_source/frestq/action_handlers.py's ActionHandlers
// and decorators.py's @task/@message_action decorators do at import time.
//
// Registering any handler for a queue reserves that queue's worker pool:
// callers are expected to pass every registered queue name to the
// scheduler so it knows which pools to start.
package registry
