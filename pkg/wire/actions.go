package wire

// Internal protocol action names, all operating on the reserved
// internal.frestq queue (see pkg/scheduler.InternalQueue). Grounded on
// original_source/frestq/protocol.py and tasks.py.
const (
	ActionUpdateTask           = "frestq.update_task"
	ActionSynchronizeTask      = "frestq.synchronize_task"
	ActionConfirmReservation   = "frestq.confirm_task_reservation"
	ActionExecuteSynchronized  = "frestq.execute_synchronized"
	ActionFinishExternalTask   = "frestq.finish_external_task"
	ActionVirtualEmptyTask     = "frestq.virtual_empty_task"
)
