package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/transport"
)

// MessageHandlerFunc is a plain message handler: one registered with
// registry.RegisterMessage rather than RegisterTask, for actions that
// operate directly on a message without driving the task state machine
// (every internal protocol action in pkg/protocol is one of these).
type MessageHandlerFunc func(ctx context.Context, e *Engine, msg *store.Message) error

// dispatchMessage is the handler the engine registers for
// transport.DispatchFunc. It is the equivalent of api.py: post_message's
// continuation, call_action_handler, branching on whether the registered
// entry drives the full task state machine (IsTask) or is a bare message
// callback.
func (e *Engine) dispatchMessage(ctx context.Context, raw json.RawMessage) error {
	var args transport.DispatchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return err
	}

	msg, err := e.Store.GetMessage(ctx, nil, args.MessageID)
	if err != nil {
		return err
	}

	entry, ok := e.Registry.Lookup(msg.Action, args.Queue)
	if !ok {
		return fmt.Errorf("%w: action=%q queue=%q", ErrNoHandler, msg.Action, args.Queue)
	}

	if !entry.IsTask {
		fn, ok := entry.Handler.(MessageHandlerFunc)
		if !ok {
			return fmt.Errorf("%w: action=%q queue=%q has the wrong handler shape", ErrNoHandler, msg.Action, args.Queue)
		}
		return fn(ctx, e, msg)
	}

	th, ok := entry.Handler.(*taskHandler)
	if !ok {
		return fmt.Errorf("%w: action=%q queue=%q has the wrong handler shape", ErrNoHandler, msg.Action, args.Queue)
	}
	return e.dispatchTaskMessage(ctx, msg, th)
}

// dispatchTaskMessage runs the registered task handler for msg, creating a
// local Task row for it on first sight, the equivalent of tasks.py's
// post_task for a freshly received foreign task.
func (e *Engine) dispatchTaskMessage(ctx context.Context, msg *store.Message, th *taskHandler) error {
	h, err := e.Load(ctx, nil, msg.TaskID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		now := time.Now()
		t := &store.Task{
			ID:             msg.TaskID,
			// Receiving an action always gives the task the sequential
			// container shape, whether or not the handler ever attaches a
			// subtask: it must already be sequential for execute_parent to
			// have somewhere to hand control to (tasks.py:1241).
			TaskType:       store.TaskTypeSequential,
			Label:          msg.Action,
			Action:         msg.Action,
			QueueName:      msg.QueueName,
			Status:         store.StatusExecuting,
			IsReceived:     true,
			IsLocal:        false,
			ReceiverURL:    e.RootURL,
			SenderURL:      msg.SenderURL,
			SenderSSLCert:  msg.SenderSSLCert,
			CreatedDate:    now,
			LastModifiedDate: now,
			InputData:      msg.InputData,
			InputAsyncData: msg.InputAsyncData,
		}
		if err := e.Store.InsertTask(ctx, nil, t); err != nil {
			return err
		}
		h = &Handle{engine: e, Task: t}
	case err != nil:
		return err
	default:
		// A task can be created locally as a plain "simple" leaf and only
		// later receive an action on it (e.g. a local task re-dispatched as
		// part of a larger flow); upgrade it the same way (tasks.py:1253-1258).
		if h.Task.TaskType == store.TaskTypeSimple {
			h.Task.TaskType = store.TaskTypeSequential
			if err := h.save(ctx); err != nil {
				return err
			}
		}
	}

	return e.runTaskHandler(ctx, h, th)
}

// runTaskHandler sets h's status to "executing", runs th.Handle for h,
// applies error handling and auto-finish, and reports the outcome to h's
// sender.
func (e *Engine) runTaskHandler(ctx context.Context, h *Handle, th *taskHandler) error {
	if err := h.setStatus(ctx, store.StatusExecuting); err != nil {
		return err
	}

	handleErr := th.Handle(ctx, h)
	if handleErr != nil {
		// Once a handler raises, the task propagates to its parent instead
		// of continuing its own sequence even if OnError swallows the error
		// below and the task still finishes "successfully" (BaseTask never
		// resets propagate once set; tasks.py's handle_error never undoes
		// self.propagate = True).
		h.Task.Propagate = true
		if th.OnError != nil {
			handleErr = th.OnError(ctx, h, handleErr)
		}
	}

	if handleErr != nil {
		h.Task.Error = errors.Join(ErrHandlerFailed, handleErr)
		if err := h.setStatus(ctx, store.StatusError); err != nil {
			return err
		}
		e.Logger.ErrorContext(ctx, "task handler failed",
			slog.String("task_id", h.Task.ID), slog.String("action", h.Task.Action), slog.Any("error", handleErr))
		if err := e.sendTaskUpdate(ctx, h); err != nil {
			return err
		}
		return e.executeParent(ctx, h)
	}

	if th.AutoFinishAfterHandler {
		if err := h.setStatus(ctx, store.StatusFinished); err != nil {
			return err
		}
		if err := e.sendTaskUpdate(ctx, h); err != nil {
			return err
		}
	}

	if h.Task.Propagate {
		return e.executeParent(ctx, h)
	}
	return h.Execute(ctx)
}
