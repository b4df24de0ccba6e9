package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/wire"
)

// Execute advances h one step through its state machine, dispatching on its
// task type. It is always safe to call again: every branch first checks the
// task's current status and is a no-op when there is nothing to do yet,
// mirroring tasks.py's execute() contract of being callable any number of
// times as the tree converges.
func (h *Handle) Execute(ctx context.Context) error {
	switch h.Task.TaskType {
	case store.TaskTypeSimple:
		return h.executeSimple(ctx)
	case store.TaskTypeSequential:
		return h.executeSequential(ctx)
	case store.TaskTypeParallel:
		return h.executeParallel(ctx)
	case store.TaskTypeSynchronized:
		return h.executeSynchronized(ctx)
	case store.TaskTypeExternal:
		return h.executeExternal(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTaskType, h.Task.TaskType)
	}
}

// executeSimple is the equivalent of SimpleTask.execute(): send the task to
// its receiver once, then let the sender side's update cycle carry it
// through to finished/error and re-run the parent.
func (h *Handle) executeSimple(ctx context.Context) error {
	switch h.Task.Status {
	case store.StatusCreated:
		return h.engine.send(ctx, h)
	case store.StatusFinished, store.StatusError:
		return h.engine.executeParent(ctx, h)
	default:
		return nil
	}
}

// executeExternal is the equivalent of ExternalTask.execute(): there is
// nothing to send, the task simply waits in "executing" until something
// external calls Finish.
func (h *Handle) executeExternal(ctx context.Context) error {
	switch h.Task.Status {
	case store.StatusCreated, store.StatusSent:
		return h.setStatus(ctx, store.StatusExecuting)
	case store.StatusFinished:
		return h.engine.executeParent(ctx, h)
	default:
		return nil
	}
}

// Finish completes an external task with the given output data, the
// equivalent of ExternalTask.finish(data). It is the only way an external
// task leaves the "executing" status.
func (h *Handle) Finish(ctx context.Context, data any) error {
	if h.Task.TaskType != store.TaskTypeExternal {
		return ErrNotExternal
	}
	raw, err := wire.Dumps(data)
	if err != nil {
		return err
	}
	h.Task.OutputData = raw
	h.Task.Status = store.StatusFinished
	if err := h.save(ctx); err != nil {
		return err
	}
	if err := h.engine.sendTaskUpdate(ctx, h); err != nil {
		return err
	}
	return h.Execute(ctx)
}

// executeSequential is the equivalent of SequentialTask.execute(): run
// subtasks strictly in order, stopping at the first one that has not
// finished yet. If that subtask is in the error status, the sequential task
// finishes in error right away.
func (h *Handle) executeSequential(ctx context.Context) error {
	if h.Task.Status == store.StatusCreated || h.Task.Status == store.StatusSent {
		if err := h.setStatus(ctx, store.StatusExecuting); err != nil {
			return err
		}
	}
	if h.Task.Status != store.StatusExecuting {
		return nil
	}

	next, err := h.engine.Store.NextUnfinishedSubtask(ctx, nil, h.Task.ID)
	if errors.Is(err, store.ErrNotFound) {
		return h.finishComposite(ctx, nil)
	}
	if err != nil {
		return err
	}

	switch next.Status {
	case store.StatusError:
		return h.finishComposite(ctx, fmt.Errorf("%w: %s", ErrSubtaskFailed, next.ID))
	case store.StatusCreated:
		child := &Handle{engine: h.engine, Task: next}
		return child.Execute(ctx)
	default:
		// Already sent/syncing/reserved/confirmed/executing: wait for its
		// own update to re-trigger us via executeParent.
		return nil
	}
}

// executeParallel is the equivalent of ParallelTask.execute(): fan every
// subtask out at once and wait for all of them to converge.
func (h *Handle) executeParallel(ctx context.Context) error {
	if h.Task.Status == store.StatusError || h.Task.Status == store.StatusFinished {
		return nil
	}

	failed, err := h.engine.Store.ErroredSubtasks(ctx, nil, h.Task.ID)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return h.finishComposite(ctx, fmt.Errorf("%w: %s", ErrSubtaskFailed, failed[0].ID))
	}

	unfinished, err := h.engine.Store.CountUnfinishedSubtasks(ctx, nil, h.Task.ID)
	if err != nil {
		return err
	}

	if h.Task.Status == store.StatusCreated || h.Task.Status == store.StatusSent {
		if err := h.setStatus(ctx, store.StatusExecuting); err != nil {
			return err
		}
		children, err := h.GetChildren(ctx)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := h.engine.SubmitExecute(ctx, nil, child); err != nil {
				return err
			}
		}
		return nil
	}

	if unfinished == 0 {
		return h.finishComposite(ctx, nil)
	}
	return nil
}

// executeSynchronized is the equivalent of SynchronizedTask.execute(): every
// subtask must reach the two-phase reservation handshake before any of them
// is allowed to run, which pkg/protocol drives via the confirm/execute
// internal actions; here we only own the created->executing transition and
// the final convergence check.
func (h *Handle) executeSynchronized(ctx context.Context) error {
	if h.Task.Status == store.StatusError || h.Task.Status == store.StatusFinished {
		return nil
	}

	failed, err := h.engine.Store.ErroredSubtasks(ctx, nil, h.Task.ID)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return h.finishComposite(ctx, fmt.Errorf("%w: %s", ErrSubtaskFailed, failed[0].ID))
	}

	if h.Task.Status == store.StatusCreated || h.Task.Status == store.StatusSent {
		if err := h.setStatus(ctx, store.StatusExecuting); err != nil {
			return err
		}
		children, err := h.GetChildren(ctx)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := h.engine.sendSynchronize(ctx, child); err != nil {
				return err
			}
		}
		return nil
	}

	unfinished, err := h.engine.Store.CountUnfinishedSubtasks(ctx, nil, h.Task.ID)
	if err != nil {
		return err
	}
	if unfinished == 0 && h.Task.Status == store.StatusExecuting {
		return h.finishComposite(ctx, nil)
	}
	return nil
}

// finishComposite finalizes a sequential/parallel/synchronized task: marks
// it finished or, when cause is non-nil, error, then propagates the
// transition to whoever is waiting on it.
func (h *Handle) finishComposite(ctx context.Context, cause error) error {
	h.Task.Error = cause
	if cause != nil {
		if err := h.setStatus(ctx, store.StatusError); err != nil {
			return err
		}
	} else {
		if err := h.setStatus(ctx, store.StatusFinished); err != nil {
			return err
		}
	}
	if !h.Task.IsLocal {
		return h.engine.sendTaskUpdate(ctx, h)
	}
	return h.engine.executeParent(ctx, h)
}
