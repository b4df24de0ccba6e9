package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/task"
	"github.com/sequentech/frestq-go/pkg/transport"
)

type updatePayload struct {
	OutputData json.RawMessage  `json:"output_data,omitempty"`
	Status     store.TaskStatus `json:"status,omitempty"`
}

// updateTask is frestq.update_task: a task's sender learns its receiver's
// latest output/status and re-runs the task's own Execute, letting a
// composite parent notice one of its children just converged.
func (c *Coordinator) updateTask(ctx context.Context, e *task.Engine, msg *store.Message) error {
	h, err := e.Load(ctx, nil, msg.TaskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var payload updatePayload
	dec := json.NewDecoder(bytes.NewReader(msg.InputData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return err
	}

	if h.Task.Status == store.StatusFinished && payload.Status != store.StatusError {
		return nil
	}

	// Reject before any mutation if the sender presenting this update isn't
	// the certificate this receiver already recorded for the task.
	if !transport.CertsEqual(msg.SenderSSLCert, h.Task.ReceiverSSLCert) {
		return transport.ErrCertificateMismatch
	}

	if payload.OutputData != nil {
		h.Task.OutputData = payload.OutputData
	}
	if payload.Status != "" {
		h.Task.Status = payload.Status
	}
	h.Task.LastModifiedDate = time.Now()
	if err := e.Store.UpdateTask(ctx, nil, h.Task); err != nil {
		return err
	}

	return h.Execute(ctx)
}

// virtualEmptyTask is frestq.virtual_empty_task: a no-op placeholder used
// when a synchronized task's subtask has nothing of its own to run beyond
// participating in the reservation barrier. It simply drives the state
// machine forward.
func (c *Coordinator) virtualEmptyTask(ctx context.Context, e *task.Engine, msg *store.Message) error {
	h, err := e.Load(ctx, nil, msg.TaskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return h.Execute(ctx)
}

// finishExternalTask is frestq.finish_external_task: lets a remote caller
// complete an external task over the wire instead of through a direct,
// in-process Handle.Finish call.
func (c *Coordinator) finishExternalTask(ctx context.Context, e *task.Engine, msg *store.Message) error {
	h, err := e.Load(ctx, nil, msg.TaskID)
	if err != nil {
		return err
	}
	if h.Task.TaskType != store.TaskTypeExternal {
		return task.ErrNotExternal
	}
	return h.Finish(ctx, msg.InputData)
}
