package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sequentech/frestq-go/pkg/scheduler"
	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/task"
	"github.com/sequentech/frestq-go/pkg/wire"
)

// reserveTaskJob is reserve_task: the receiver side of a synchronized
// subtask's reservation. It blocks the worker goroutine it runs on until the
// reservation is either confirmed or times out, exactly like the original
// blocks its dedicated thread on the shared condition variable.
func (c *Coordinator) reserveTaskJob(ctx context.Context, raw json.RawMessage) error {
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
	if h.Task.Status != store.StatusSyncing {
		return nil
	}

	if hooks := c.engine.ReservationHooksFor(h); hooks != nil {
		data, err := hooks.Reserve(ctx, h)
		if err != nil {
			return err
		}
		raw, err := wire.Dumps(data)
		if err != nil {
			return err
		}
		h.Task.ReservationData = raw
	}

	h.Task.Status = store.StatusReserved
	h.Task.LastModifiedDate = time.Now()
	if err := c.engine.Store.UpdateTask(ctx, nil, h.Task); err != nil {
		return err
	}

	if err := c.ackReservation(ctx, h); err != nil {
		return err
	}

	at := time.Now().Add(c.timeout)
	if err := c.engine.Scheduler.SubmitAt(ctx, nil, scheduler.InternalQueue, cancelReservedFuncName, at, taskIDArgs{TaskID: h.Task.ID}); err != nil {
		return err
	}

	return c.waitForReservation(ctx, h.Task.ID)
}

// waitForReservation is the reservation wait loop: spurious-wakeup tolerant,
// re-reads the task row on every wake because the broadcasting goroutine
// only signals, it never passes the new state directly.
func (c *Coordinator) waitForReservation(ctx context.Context, taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		c.cond.Wait()

		fresh, err := c.engine.Store.GetTask(ctx, nil, taskID)
		if err != nil {
			return err
		}

		switch fresh.Status {
		case store.StatusReserved:
			continue
		case store.StatusCreated:
			c.logger.DebugContext(ctx, "reservation timed out", slog.String("task_id", taskID))
			return nil
		case store.StatusConfirmed:
			return c.runConfirmedSubtask(ctx, fresh)
		default:
			continue
		}
	}
}

// runConfirmedSubtask is the tail of reserve_task once a confirmation
// arrives: run the registered handler synchronously, then drive Execute so
// a sequential/parallel parent notices.
func (c *Coordinator) runConfirmedSubtask(ctx context.Context, t *store.Task) error {
	h, err := c.engine.Load(ctx, nil, t.ID)
	if err != nil {
		return err
	}

	if _, err := c.engine.RunRegisteredHandler(ctx, h); err != nil {
		return err
	}
	return h.Execute(ctx)
}

// ackReservation sends frestq.confirm_task_reservation to the director, the
// equivalent of protocol.py: ack_reservation.
func (c *Coordinator) ackReservation(ctx context.Context, h *task.Handle) error {
	if h.Task.Status != store.StatusReserved {
		return nil
	}

	expiry := wire.Time(time.Now().Add(c.timeout))
	payload := struct {
		ReservationData           json.RawMessage `json:"reservation_data,omitempty"`
		ReservationExpirationDate wire.Time       `json:"reservation_expiration_date"`
	}{
		ReservationData:           h.Task.ReservationData,
		ReservationExpirationDate: expiry,
	}
	data, err := wire.Dumps(payload)
	if err != nil {
		return err
	}

	env := wire.Envelope{
		MessageID: newMessageID(),
		Action:    wire.ActionConfirmReservation,
		SenderURL: c.engine.RootURL,
		TaskID:    h.Task.ID,
		Data:      data,
	}
	msg := &store.Message{
		ID:          env.MessageID,
		TaskID:      h.Task.ID,
		Action:      wire.ActionConfirmReservation,
		QueueName:   scheduler.InternalQueue,
		SenderURL:   c.engine.RootURL,
		ReceiverURL: h.Task.SenderURL,
		InputData:   data,
	}
	return c.engine.Transport.Send(ctx, nil, h.Task.SenderURL, scheduler.InternalQueue, env, msg, h.Task, false)
}

// cancelReservedSubtaskJob is cancel_reserved_subtask: fired when a
// reservation's timeout elapses on the receiver side before a confirmation
// arrives.
func (c *Coordinator) cancelReservedSubtaskJob(ctx context.Context, raw json.RawMessage) error {
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

	if hooks := c.engine.ReservationHooksFor(h); hooks != nil {
		hooks.CancelReservation(ctx, h)
	}

	if h.Task.Status != store.StatusSyncing && h.Task.Status != store.StatusReserved {
		return nil
	}

	h.Task.Status = store.StatusCreated
	h.Task.LastModifiedDate = time.Now()
	if err := c.engine.Store.UpdateTask(ctx, nil, h.Task); err != nil {
		return err
	}

	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
	return nil
}
