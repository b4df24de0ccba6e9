package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sequentech/frestq-go/pkg/config"
	"github.com/sequentech/frestq-go/pkg/logger"
	"github.com/sequentech/frestq-go/pkg/protocol"
	"github.com/sequentech/frestq-go/pkg/registry"
	"github.com/sequentech/frestq-go/pkg/scheduler"
	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/task"
	"github.com/sequentech/frestq-go/pkg/transport"
)

// cmdFinishTask mirrors utils.py's finish_task: resolve the external task,
// mark it finished with the supplied output data, and let the usual
// engine machinery queue the resulting update/parent-execute jobs. No
// running node process is required - the jobs sit in river_job until one
// picks them up, the same way the original just commits the DB row and
// lets the next scheduler tick notice it.
func cmdFinishTask(ctx context.Context, st *store.Store, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("frestqctl: finish requires <task-id> <json-data>")
	}
	t, err := findTask(ctx, st, args[0])
	if err != nil {
		return fmt.Errorf("frestqctl: task %s not found: %w", args[0], err)
	}
	if t.TaskType != store.TaskTypeExternal {
		return fmt.Errorf("frestqctl: task %s is not external", shortID(t.ID))
	}

	var data any
	if err := json.Unmarshal([]byte(args[1]), &data); err != nil {
		return fmt.Errorf("frestqctl: error loading the json finish data: %w", err)
	}

	eng, err := buildEngine(st)
	if err != nil {
		return err
	}
	h, err := eng.Load(ctx, nil, t.ID)
	if err != nil {
		return err
	}
	if err := h.Finish(ctx, data); err != nil {
		return fmt.Errorf("frestqctl: finish task %s: %w", shortID(t.ID), err)
	}
	fmt.Printf("task %s finished\n", shortID(t.ID))
	return nil
}

// buildEngine assembles just enough of a Node to run task-engine/protocol
// logic against the store without starting the scheduler's worker pool.
func buildEngine(st *store.Store) (*task.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewNope()

	reg := registry.New()
	sch, err := scheduler.New(st.Pool(), reg)
	if err != nil {
		return nil, fmt.Errorf("frestqctl: build scheduler: %w", err)
	}
	tr, err := transport.NewClient(cfg.Transport, st, log)
	if err != nil {
		return nil, fmt.Errorf("frestqctl: build transport client: %w", err)
	}
	eng := task.NewEngine(st, reg, sch, tr, cfg.Transport.RootURL, log)
	coord := protocol.New(eng, reg, sch, cfg.Scheduler.ReservationTimeout, log)
	if err := coord.Register(); err != nil {
		return nil, fmt.Errorf("frestqctl: register protocol handlers: %w", err)
	}
	return eng, nil
}
