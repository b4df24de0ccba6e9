package task

import "context"

// ReservationHooks lets a task handler observe and influence the two-phase
// reservation protocol pkg/protocol drives for synchronized subtasks, the
// equivalent of action_handler_object.reserve()/cancel_reservation() in
// original_source/frestq/action_handlers.py. Both methods are optional: a
// handler registered without WithReservationHooks just reserves with no
// extra data and ignores cancellation.
type ReservationHooks interface {
	// Reserve returns the reservation payload to hand back to the director,
	// stored on the task's reservation_data column.
	Reserve(ctx context.Context, h *Handle) (any, error)
	// CancelReservation is called when a reservation times out before
	// confirmation arrives.
	CancelReservation(ctx context.Context, h *Handle)
}

// SynchronizationHooks lets a synchronized task's own handler observe each
// child reservation as it arrives, the equivalent of
// action_handler_object.new_reservation()/cancelled_reservation()/pre_execute()
// on the director side.
type SynchronizationHooks interface {
	NewReservation(ctx context.Context, parent, child *Handle)
	CancelledReservation(ctx context.Context, parent, child *Handle)
	PreExecute(ctx context.Context, parent *Handle)
}

// WithReservationHooks attaches reservation callbacks to a task handler
// registered for a synchronized task's child action.
func WithReservationHooks(hooks ReservationHooks) TaskOption {
	return func(th *taskHandler) { th.Reservation = hooks }
}

// WithSynchronizationHooks attaches director-side callbacks to a task
// handler registered for a synchronized task's own action.
func WithSynchronizationHooks(hooks SynchronizationHooks) TaskOption {
	return func(th *taskHandler) { th.Synchronization = hooks }
}

// ReservationHooksFor returns the reservation hooks registered for h's
// action and queue, or nil if there are none.
func (e *Engine) ReservationHooksFor(h *Handle) ReservationHooks {
	entry, ok := e.Registry.Lookup(h.Task.Action, h.Task.QueueName)
	if !ok || !entry.IsTask {
		return nil
	}
	th, ok := entry.Handler.(*taskHandler)
	if !ok {
		return nil
	}
	return th.Reservation
}

// SynchronizationHooksFor returns the synchronization hooks registered for
// h's action and queue, or nil if there are none.
func (e *Engine) SynchronizationHooksFor(h *Handle) SynchronizationHooks {
	entry, ok := e.Registry.Lookup(h.Task.Action, h.Task.QueueName)
	if !ok || !entry.IsTask {
		return nil
	}
	th, ok := entry.Handler.(*taskHandler)
	if !ok {
		return nil
	}
	return th.Synchronization
}

// RunRegisteredHandler runs the task handler registered for h's action and
// queue, if any, applying auto-finish and error-handling exactly like a
// freshly dispatched message would. It reports whether a handler was found.
func (e *Engine) RunRegisteredHandler(ctx context.Context, h *Handle) (bool, error) {
	entry, ok := e.Registry.Lookup(h.Task.Action, h.Task.QueueName)
	if !ok || !entry.IsTask {
		return false, nil
	}
	th, ok := entry.Handler.(*taskHandler)
	if !ok {
		return false, nil
	}
	return true, e.runTaskHandler(ctx, h, th)
}
