package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sequentech/frestq-go/pkg/scheduler"
	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/task"
	"github.com/sequentech/frestq-go/pkg/wire"
)

func newMessageID() string { return uuid.NewString() }

type synchronizePayload struct {
	Action         string          `json:"action"`
	QueueName      string          `json:"queue_name"`
	InputData      json.RawMessage `json:"input_data"`
	PingbackDate   *wire.Time      `json:"pingback_date,omitempty"`
	ExpirationDate *wire.Time      `json:"expiration_date,omitempty"`
}

// synchronizeTask is frestq.synchronize_task: a subtask of a remote
// synchronized task arrives here for the first time (or a local task is
// converted in place), and is handed off to reserveTaskJob on its own
// queue.
func (c *Coordinator) synchronizeTask(ctx context.Context, e *task.Engine, msg *store.Message) error {
	h, err := e.Load(ctx, nil, msg.TaskID)
	notFound := errors.Is(err, store.ErrNotFound)
	if err != nil && !notFound {
		return err
	}
	if !notFound && h.Task.Status != store.StatusCreated {
		return nil
	}

	isLocal := msg.SenderURL == e.RootURL

	if notFound {
		var payload synchronizePayload
		if err := json.Unmarshal(msg.InputData, &payload); err != nil {
			return err
		}

		now := time.Now()
		t := &store.Task{
			ID:               msg.TaskID,
			TaskType:         store.TaskTypeSequential,
			Action:           payload.Action,
			QueueName:        payload.QueueName,
			SenderURL:        msg.SenderURL,
			ReceiverURL:      msg.ReceiverURL,
			IsReceived:       msg.IsReceived,
			IsLocal:          isLocal,
			SenderSSLCert:    msg.SenderSSLCert,
			InputData:        payload.InputData,
			Status:           store.StatusSyncing,
			CreatedDate:      now,
			LastModifiedDate: now,
		}
		if payload.PingbackDate != nil {
			pb := payload.PingbackDate.Std()
			t.PingbackDate = &pb
		}
		if payload.ExpirationDate != nil {
			exp := payload.ExpirationDate.Std()
			t.ExpirationDate = &exp
		}
		if err := e.Store.InsertTask(ctx, nil, t); err != nil {
			return err
		}
		h, err = e.Load(ctx, nil, t.ID)
		if err != nil {
			return err
		}
	} else {
		if isLocal && h.Task.TaskType == store.TaskTypeSimple {
			h.Task.TaskType = store.TaskTypeSequential
		}
		h.Task.Status = store.StatusSyncing
		h.Task.LastModifiedDate = time.Now()
		if err := e.Store.UpdateTask(ctx, nil, h.Task); err != nil {
			return err
		}
	}

	if err := e.Scheduler.SubmitNow(ctx, nil, h.Task.QueueName, reserveFuncName, taskIDArgs{TaskID: h.Task.ID}); err != nil {
		return err
	}

	if h.Task.ExpirationDate != nil {
		at := time.Now().Add(c.timeout)
		if err := e.Scheduler.SubmitAt(ctx, nil, scheduler.InternalQueue, cancelReservedFuncName, at, taskIDArgs{TaskID: h.Task.ID}); err != nil {
			return err
		}
	}
	return nil
}

// sendSynchronize sends frestq.synchronize_task for child, the equivalent of
// tasks.py: send_synchronization_message.
func sendSynchronize(ctx context.Context, e *task.Engine, child *task.Handle) error {
	payload := synchronizePayload{
		Action:    child.Task.Action,
		QueueName: child.Task.QueueName,
		InputData: child.Task.InputData,
	}
	if child.Task.PingbackDate != nil {
		t := wire.Time(*child.Task.PingbackDate)
		payload.PingbackDate = &t
	}
	if child.Task.ExpirationDate != nil {
		t := wire.Time(*child.Task.ExpirationDate)
		payload.ExpirationDate = &t
	}
	data, err := wire.Dumps(payload)
	if err != nil {
		return err
	}

	env := wire.Envelope{
		MessageID: newMessageID(),
		Action:    wire.ActionSynchronizeTask,
		SenderURL: e.RootURL,
		TaskID:    child.Task.ID,
		Data:      data,
	}
	msg := &store.Message{
		ID:          env.MessageID,
		TaskID:      child.Task.ID,
		Action:      wire.ActionSynchronizeTask,
		QueueName:   scheduler.InternalQueue,
		SenderURL:   e.RootURL,
		ReceiverURL: child.Task.ReceiverURL,
		InputData:   data,
	}
	return e.Transport.Send(ctx, nil, child.Task.ReceiverURL, scheduler.InternalQueue, env, msg, child.Task, false)
}
