package task

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sequentech/frestq-go/pkg/scheduler"
	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/wire"
)

// send builds the wire envelope for h and delivers it to h.Task.ReceiverURL,
// the equivalent of BaseTask.send(). It always asks the transport layer to
// capture the receiver's certificate (update_task_receiver_ssl_cert=True in
// the original), since a task's receiver identity is worth pinning once
// learned.
func (e *Engine) send(ctx context.Context, h *Handle) error {
	if err := h.setStatus(ctx, store.StatusSent); err != nil {
		return err
	}

	env := wire.Envelope{
		MessageID: newTaskID(),
		Action:    h.Task.Action,
		SenderURL: e.RootURL,
		TaskID:    h.Task.ID,
		Data:      h.Task.InputData,
		AsyncData: h.Task.InputAsyncData,
	}

	msg := &store.Message{
		ID:             env.MessageID,
		TaskID:         h.Task.ID,
		Action:         h.Task.Action,
		QueueName:      h.Task.QueueName,
		SenderURL:      e.RootURL,
		ReceiverURL:    h.Task.ReceiverURL,
		IsReceived:     false,
		SenderSSLCert:  h.Task.SenderSSLCert,
		InputData:      h.Task.InputData,
		InputAsyncData: h.Task.InputAsyncData,
	}

	return e.Transport.Send(ctx, nil, h.Task.ReceiverURL, h.Task.QueueName, env, msg, h.Task, true)
}

// sendTaskUpdate sends frestq.update_task to h's sender with
// {output_data, status}, the equivalent of tasks.py: send_task_update. After
// sending, if h has a parent, the parent is re-executed, since the parent's
// own completion may now depend on h's new state.
func (e *Engine) sendTaskUpdate(ctx context.Context, h *Handle) error {
	payload := struct {
		OutputData any             `json:"output_data"`
		Status     store.TaskStatus `json:"status"`
	}{
		OutputData: h.Task.OutputData,
		Status:     h.Task.Status,
	}

	env := wire.Envelope{
		MessageID: newTaskID(),
		Action:    wire.ActionUpdateTask,
		SenderURL: e.RootURL,
		TaskID:    h.Task.ID,
	}
	data, err := wire.Dumps(payload)
	if err != nil {
		return err
	}
	env.Data = data

	msg := &store.Message{
		ID:          env.MessageID,
		TaskID:      h.Task.ID,
		Action:      wire.ActionUpdateTask,
		QueueName:   scheduler.InternalQueue,
		SenderURL:   e.RootURL,
		ReceiverURL: h.Task.SenderURL,
		IsReceived:  false,
		InputData:   data,
	}

	if err := e.Transport.Send(ctx, nil, h.Task.SenderURL, scheduler.InternalQueue, env, msg, h.Task, false); err != nil {
		return err
	}

	return e.executeParent(ctx, h)
}

// sendSynchronize sends frestq.synchronize_task for a synchronized task's
// child, the equivalent of tasks.py's SynchronizedTask.execute() calling
// send_synchronization_msg for each subtask. pkg/protocol owns the handler
// that receives this action and runs the two-phase reservation handshake.
func (e *Engine) sendSynchronize(ctx context.Context, child *Handle) error {
	data, err := wire.Dumps(struct {
		Action    string          `json:"action"`
		QueueName string          `json:"queue_name"`
		InputData json.RawMessage `json:"input_data"`
	}{child.Task.Action, child.Task.QueueName, child.Task.InputData})
	if err != nil {
		return err
	}

	env := wire.Envelope{
		MessageID: newTaskID(),
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

// executeParent re-runs h's parent, if it has one stored locally. A task
// with no locally stored parent (a root, or one whose parent lives on a
// different node) is simply left alone.
func (e *Engine) executeParent(ctx context.Context, h *Handle) error {
	parent, err := h.GetParent(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return parent.Execute(ctx)
}
