package protocol

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sequentech/frestq-go/pkg/registry"
	"github.com/sequentech/frestq-go/pkg/scheduler"
	"github.com/sequentech/frestq-go/pkg/task"
	"github.com/sequentech/frestq-go/pkg/wire"
)

const (
	reserveFuncName                  = "frestq.reserve_task"
	cancelReservedFuncName           = "frestq.cancel_reserved_subtask"
	directorCancelFuncName           = "frestq.director_cancel_reserved_subtask"
	synchronizedSubtaskStartFuncName = "frestq.director_synchronized_subtask_start"
)

// Coordinator owns every internal protocol handler and the single
// reservation condition variable they wait and broadcast on.
type Coordinator struct {
	engine  *task.Engine
	reg     *registry.Registry
	sched   *scheduler.Scheduler
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	cond *sync.Cond
}

// New builds a Coordinator. timeout is the reservation window
// (RESERVATION_TIMEOUT in the original, 60s by default).
func New(e *task.Engine, reg *registry.Registry, sched *scheduler.Scheduler, timeout time.Duration, logger *slog.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Coordinator{engine: e, reg: reg, sched: sched, timeout: timeout, logger: logger}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Register wires every internal action and scheduler function this
// coordinator owns onto the registry and scheduler passed to New.
func (c *Coordinator) Register() error {
	if err := c.reg.RegisterMessage(wire.ActionUpdateTask, scheduler.InternalQueue, task.MessageHandlerFunc(c.updateTask)); err != nil {
		return err
	}
	if err := c.reg.RegisterMessage(wire.ActionSynchronizeTask, scheduler.InternalQueue, task.MessageHandlerFunc(c.synchronizeTask)); err != nil {
		return err
	}
	if err := c.reg.RegisterMessage(wire.ActionConfirmReservation, scheduler.InternalQueue, task.MessageHandlerFunc(c.confirmTaskReservation)); err != nil {
		return err
	}
	if err := c.reg.RegisterMessage(wire.ActionExecuteSynchronized, scheduler.InternalQueue, task.MessageHandlerFunc(c.executeSynchronizedMsg)); err != nil {
		return err
	}
	if err := c.reg.RegisterMessage(wire.ActionFinishExternalTask, scheduler.InternalQueue, task.MessageHandlerFunc(c.finishExternalTask)); err != nil {
		return err
	}
	if err := c.reg.RegisterMessage(wire.ActionVirtualEmptyTask, scheduler.InternalQueue, task.MessageHandlerFunc(c.virtualEmptyTask)); err != nil {
		return err
	}

	c.sched.RegisterFunc(reserveFuncName, c.reserveTaskJob)
	c.sched.RegisterFunc(cancelReservedFuncName, c.cancelReservedSubtaskJob)
	c.sched.RegisterFunc(directorCancelFuncName, c.directorCancelReservedSubtaskJob)
	c.sched.RegisterFunc(synchronizedSubtaskStartFuncName, c.synchronizedSubtaskStartJob)
	return nil
}

// taskIDArgs is the payload shared by every scheduler function in this
// package: they all operate on exactly one task id.
type taskIDArgs struct {
	TaskID string `json:"task_id"`
}
