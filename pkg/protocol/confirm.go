package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sequentech/frestq-go/pkg/scheduler"
	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/task"
	"github.com/sequentech/frestq-go/pkg/wire"
)

type confirmPayload struct {
	ReservationData           json.RawMessage `json:"reservation_data,omitempty"`
	ReservationExpirationDate wire.Time       `json:"reservation_expiration_date"`
}

// confirmTaskReservation is director_confirm_task_reservation: the director
// of a synchronized task receives one child's reservation, and once every
// child has reserved, kicks all of them off together.
func (c *Coordinator) confirmTaskReservation(ctx context.Context, e *task.Engine, msg *store.Message) error {
	h, err := e.Load(ctx, nil, msg.TaskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	parent, err := h.GetParent(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	validStatus := h.Task.Status == store.StatusCreated || h.Task.Status == store.StatusSyncing || h.Task.Status == store.StatusReserved
	if !validStatus || parent.Task.Status != store.StatusExecuting {
		return nil
	}

	var payload confirmPayload
	if err := json.Unmarshal(msg.InputData, &payload); err != nil {
		return err
	}

	h.Task.Status = store.StatusReserved
	h.Task.ReservationData = payload.ReservationData
	h.Task.LastModifiedDate = time.Now()
	if err := e.Store.UpdateTask(ctx, nil, h.Task); err != nil {
		return err
	}

	if err := e.Scheduler.SubmitAt(ctx, nil, scheduler.InternalQueue, directorCancelFuncName, payload.ReservationExpirationDate.Std(), taskIDArgs{TaskID: h.Task.ID}); err != nil {
		return err
	}

	if hooks := e.SynchronizationHooksFor(parent); hooks != nil {
		hooks.NewReservation(ctx, parent, h)
	}

	children, err := parent.GetChildren(ctx)
	if err != nil {
		return err
	}

	notReserved := 0
	for _, child := range children {
		if child.Task.Status != store.StatusReserved {
			notReserved++
		}
		if child.Task.Status == store.StatusCreated {
			if err := sendSynchronize(ctx, e, child); err != nil {
				return err
			}
		}
	}
	if notReserved != 0 {
		return nil
	}

	if hooks := e.SynchronizationHooksFor(parent); hooks != nil {
		hooks.PreExecute(ctx, parent)
	}

	for _, child := range children {
		if err := e.Scheduler.SubmitNow(ctx, nil, scheduler.InternalQueue, synchronizedSubtaskStartFuncName, taskIDArgs{TaskID: child.Task.ID}); err != nil {
			return err
		}
	}
	return nil
}

// directorCancelReservedSubtaskJob is director_cancel_reserved_subtask: a
// reservation the director handed out timed out before a child executed.
// The parent is re-derived fresh from the child task row rather than
// reused from an outer closure, fixing the original's reference to an
// out-of-scope parent_instance variable.
func (c *Coordinator) directorCancelReservedSubtaskJob(ctx context.Context, raw json.RawMessage) error {
	var args taskIDArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return err
	}

	h, err := c.engine.Load(ctx, nil, args.TaskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	parent, err := h.GetParent(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if parent != nil {
		if hooks := c.engine.SynchronizationHooksFor(parent); hooks != nil {
			hooks.CancelledReservation(ctx, parent, h)
		}
	}

	if h.Task.Status != store.StatusReserved {
		return nil
	}

	h.Task.Status = store.StatusCreated
	h.Task.LastModifiedDate = time.Now()
	if err := c.engine.Store.UpdateTask(ctx, nil, h.Task); err != nil {
		return err
	}

	if parent == nil {
		return nil
	}

	children, err := parent.GetChildren(ctx)
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.Task.Status != store.StatusCreated {
			// not every sibling has expired yet; wait for the rest.
			return nil
		}
	}
	for _, child := range children {
		if err := sendSynchronize(ctx, c.engine, child); err != nil {
			return err
		}
	}
	return nil
}

// synchronizedSubtaskStartJob is director_synchronized_subtask_start: tells
// a reserved subtask's receiver to actually run it.
func (c *Coordinator) synchronizedSubtaskStartJob(ctx context.Context, raw json.RawMessage) error {
	var args taskIDArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return err
	}

	h, err := c.engine.Load(ctx, nil, args.TaskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if h.Task.Status != store.StatusReserved {
		return nil
	}

	payload := struct {
		Action    string          `json:"action"`
		QueueName string          `json:"queue_name"`
		InputData json.RawMessage `json:"input_data"`
	}{
		Action:    h.Task.Action,
		QueueName: h.Task.QueueName,
		InputData: h.Task.InputData,
	}
	data, err := wire.Dumps(payload)
	if err != nil {
		return err
	}

	env := wire.Envelope{
		MessageID: newMessageID(),
		Action:    wire.ActionExecuteSynchronized,
		SenderURL: c.engine.RootURL,
		TaskID:    h.Task.ID,
		Data:      data,
	}
	msg := &store.Message{
		ID:          env.MessageID,
		TaskID:      h.Task.ID,
		Action:      wire.ActionExecuteSynchronized,
		QueueName:   scheduler.InternalQueue,
		SenderURL:   c.engine.RootURL,
		ReceiverURL: h.Task.ReceiverURL,
		InputData:   data,
	}
	return c.engine.Transport.Send(ctx, nil, h.Task.ReceiverURL, scheduler.InternalQueue, env, msg, h.Task, false)
}

// executeSynchronizedMsg is frestq.execute_synchronized: the receiver of a
// confirmed reservation gets its final input data and wakes its waiting
// reserveTaskJob goroutine.
func (c *Coordinator) executeSynchronizedMsg(ctx context.Context, e *task.Engine, msg *store.Message) error {
	h, err := e.Load(ctx, nil, msg.TaskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if h.Task.Status != store.StatusReserved {
		return nil
	}

	var payload struct {
		InputData json.RawMessage `json:"input_data"`
	}
	if err := json.Unmarshal(msg.InputData, &payload); err != nil {
		return err
	}

	h.Task.InputData = payload.InputData
	h.Task.Status = store.StatusConfirmed
	h.Task.LastModifiedDate = time.Now()
	if err := e.Store.UpdateTask(ctx, nil, h.Task); err != nil {
		return err
	}

	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
	return nil
}
