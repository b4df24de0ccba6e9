package task

import "errors"

var (
	// ErrHandlerFailed wraps any error returned by a registered task handler.
	ErrHandlerFailed = errors.New("task: handler failed")

	// ErrSubtaskFailed is the synthesized error a sequential or parallel
	// task reports when one of its children finished in the error status,
	// mirroring tasks.py's TaskError/SubTasksFailed.
	ErrSubtaskFailed = errors.New("task: subtask failed")

	// ErrUnknownTaskType is returned when a store.Task row carries a
	// task_type the engine does not recognize.
	ErrUnknownTaskType = errors.New("task: unknown task type")

	// ErrNoHandler is returned when running a task whose action has no
	// registered handler.
	ErrNoHandler = errors.New("task: no handler registered")

	// ErrNotExternal is returned when Finish is called on a task that is
	// not an external task.
	ErrNotExternal = errors.New("task: not an external task")
)
