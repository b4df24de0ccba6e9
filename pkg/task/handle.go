package task

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sequentech/frestq-go/pkg/registry"
	"github.com/sequentech/frestq-go/pkg/scheduler"
	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/transport"
)

// HandlerFunc is a task action handler: the Go equivalent of an
// action_handler_object.execute() call in the original. It runs once the
// task reaches the "executing" status.
type HandlerFunc func(ctx context.Context, h *Handle) error

// ErrorHandlerFunc optionally intercepts a handler's error, the Go
// equivalent of action_handler_object.handle_error(e). Returning nil
// swallows the error and finishes the task normally; returning a non-nil
// error (the same one or a new one) finishes it in the error status.
type ErrorHandlerFunc func(ctx context.Context, h *Handle, err error) error

// taskHandler is what gets stored in the registry for an IsTask entry.
type taskHandler struct {
	Handle  HandlerFunc
	OnError ErrorHandlerFunc
	// AutoFinishAfterHandler mirrors BaseTask.auto_finish_after_handler:
	// when true (the default) the task is marked finished as soon as Handle
	// returns successfully, without waiting for a separate completion
	// signal (e.g. an external task's own Finish call).
	AutoFinishAfterHandler bool
	Reservation            ReservationHooks
	Synchronization        SynchronizationHooks
}

// Engine ties the store, registry, scheduler and transport together to run
// the task state machine.
type Engine struct {
	Store     *store.Store
	Registry  *registry.Registry
	Scheduler *scheduler.Scheduler
	Transport *transport.Client
	RootURL   string
	Logger    *slog.Logger
}

// NewEngine builds a task Engine and registers its dispatch function on sch.
func NewEngine(st *store.Store, reg *registry.Registry, sch *scheduler.Scheduler, tr *transport.Client, rootURL string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Engine{Store: st, Registry: reg, Scheduler: sch, Transport: tr, RootURL: rootURL, Logger: logger}
	sch.RegisterFunc(transport.DispatchFunc, e.dispatchMessage)
	sch.RegisterFunc(executeFuncName, e.executeByID)
	return e
}

const executeFuncName = "frestq.execute_task"

type executeArgs struct {
	TaskID string `json:"task_id"`
}

func (e *Engine) executeByID(ctx context.Context, raw json.RawMessage) error {
	var args executeArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return err
	}
	h, err := e.Load(ctx, nil, args.TaskID)
	if err != nil {
		return err
	}
	return h.Execute(ctx)
}

// SubmitExecute schedules h.Execute to run on the task's own queue, the
// equivalent of sched.add_now_job(execute_task, [subtask.id]) used by
// ParallelTask to fan out its children.
func (e *Engine) SubmitExecute(ctx context.Context, tx pgx.Tx, h *Handle) error {
	return e.Scheduler.SubmitNow(ctx, tx, h.Task.QueueName, executeFuncName, executeArgs{TaskID: h.Task.ID})
}

// RegisterTask registers a task handler for action on queue.
func (e *Engine) RegisterTask(action, queue string, handler HandlerFunc, opts ...TaskOption) error {
	th := &taskHandler{Handle: handler, AutoFinishAfterHandler: true}
	for _, opt := range opts {
		opt(th)
	}
	return e.Registry.RegisterTask(action, queue, th)
}

// TaskOption configures a registered task handler.
type TaskOption func(*taskHandler)

// WithErrorHandler sets a handler invoked when Handle returns an error,
// mirroring action_handler_object.handle_error.
func WithErrorHandler(fn ErrorHandlerFunc) TaskOption {
	return func(th *taskHandler) { th.OnError = fn }
}

// WithManualFinish disables auto-finishing after Handle returns, for
// handlers (typically external tasks) that complete asynchronously.
func WithManualFinish() TaskOption {
	return func(th *taskHandler) { th.AutoFinishAfterHandler = false }
}

// Handle is a live reference to one task-tree node.
type Handle struct {
	engine *Engine
	Task   *store.Task
}

// Load fetches a task by id and wraps it in a Handle.
func (e *Engine) Load(ctx context.Context, tx pgx.Tx, id string) (*Handle, error) {
	t, err := e.Store.GetTask(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return &Handle{engine: e, Task: t}, nil
}

// Engine returns the owning Engine.
func (h *Handle) Engine() *Engine { return h.engine }

// IsInternal reports whether this task's queue is the reserved internal
// protocol queue, the equivalent of BaseTask.is_internal().
func (h *Handle) IsInternal() bool {
	return h.Task.QueueName == scheduler.InternalQueue
}

// GetParent returns the parent task, or store.ErrNotFound if h is a root.
func (h *Handle) GetParent(ctx context.Context) (*Handle, error) {
	p, err := h.engine.Store.GetParent(ctx, nil, h.Task)
	if err != nil {
		return nil, err
	}
	return &Handle{engine: h.engine, Task: p}, nil
}

// GetChildren returns every direct subtask, ordered.
func (h *Handle) GetChildren(ctx context.Context) ([]*Handle, error) {
	children, err := h.engine.Store.GetChildren(ctx, nil, h.Task.ID)
	if err != nil {
		return nil, err
	}
	return wrapAll(h.engine, children), nil
}

// GetChild returns the direct subtask labeled label.
func (h *Handle) GetChild(ctx context.Context, label string) (*Handle, error) {
	children, err := h.GetChildren(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if c.Task.Label == label {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

// GetSiblings returns every task sharing h's parent, h included.
func (h *Handle) GetSiblings(ctx context.Context) ([]*Handle, error) {
	siblings, err := h.engine.Store.GetSiblings(ctx, nil, h.Task)
	if err != nil {
		return nil, err
	}
	return wrapAll(h.engine, siblings), nil
}

// GetSibling returns the sibling labeled label.
func (h *Handle) GetSibling(ctx context.Context, label string) (*Handle, error) {
	siblings, err := h.GetSiblings(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range siblings {
		if s.Task.Label == label {
			return s, nil
		}
	}
	return nil, store.ErrNotFound
}

// GetNext returns the next sibling in order.
func (h *Handle) GetNext(ctx context.Context) (*Handle, error) {
	next, err := h.engine.Store.GetNext(ctx, nil, h.Task)
	if err != nil {
		return nil, err
	}
	return &Handle{engine: h.engine, Task: next}, nil
}

// GetPrev returns the previous sibling in order.
func (h *Handle) GetPrev(ctx context.Context) (*Handle, error) {
	prev, err := h.engine.Store.GetPrev(ctx, nil, h.Task)
	if err != nil {
		return nil, err
	}
	return &Handle{engine: h.engine, Task: prev}, nil
}

func wrapAll(e *Engine, rows []*store.Task) []*Handle {
	out := make([]*Handle, len(rows))
	for i, r := range rows {
		out[i] = &Handle{engine: e, Task: r}
	}
	return out
}

// SetOutputData sets the task's output_data column and, optionally, sends an
// immediate frestq.update_task to the task's sender, mirroring
// BaseTask.set_output_data(data, send_update_to_sender=False). This lets a
// running handler publish partial output before the task finishes.
func (h *Handle) SetOutputData(ctx context.Context, data any, sendUpdate bool) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	h.Task.OutputData = raw
	h.Task.LastModifiedDate = time.Now()
	if err := h.engine.Store.UpdateTask(ctx, nil, h.Task); err != nil {
		return err
	}
	if sendUpdate {
		return h.engine.sendTaskUpdate(ctx, h)
	}
	return nil
}

// save persists the current in-memory state of h.Task, stamping
// LastModifiedDate.
func (h *Handle) save(ctx context.Context) error {
	h.Task.LastModifiedDate = time.Now()
	return h.engine.Store.UpdateTask(ctx, nil, h.Task)
}

// setStatus transitions the task to status and persists it.
func (h *Handle) setStatus(ctx context.Context, status store.TaskStatus) error {
	h.Task.Status = status
	return h.save(ctx)
}

func newTaskID() string { return uuid.NewString() }
