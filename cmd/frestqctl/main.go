// Command frestqctl is a thin operational CLI over a frestq node, grounded
// on original_source/frestq/utils.py's list_tasks/list_messages/task_tree/
// show_task/show_message/show_external_task/finish_task/show_activity and
// app.py's parse_args. Most subcommands only read through pkg/store; finish
// additionally builds a task engine to replicate finish_task's side effects
// (outbound update, parent execution, scheduler job submission).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sequentech/frestq-go/pkg/config"
	"github.com/sequentech/frestq-go/pkg/db"
	"github.com/sequentech/frestq-go/pkg/logger"
	"github.com/sequentech/frestq-go/pkg/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help", "-h", "--help":
		printUsage()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("frestqctl: load config: %w", err)
	}
	log := logger.NewNope()

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.Store.ConnectionString, db.WithLogger(log))
	if err != nil {
		return fmt.Errorf("frestqctl: connect: %w", err)
	}
	defer pool.Close()

	st := store.New(pool, store.WithLogger(log))

	switch cmd {
	case "tasks":
		return cmdListTasks(ctx, st, rest)
	case "messages":
		return cmdListMessages(ctx, st, rest)
	case "tree":
		return cmdTaskTree(ctx, st, rest)
	case "show-task":
		return cmdShowTask(ctx, st, rest)
	case "show-message":
		return cmdShowMessage(ctx, st, rest)
	case "show-external":
		return cmdShowExternalTask(ctx, st, rest)
	case "finish":
		return cmdFinishTask(ctx, st, rest)
	case "activity":
		return cmdShowActivity(rest)
	default:
		printUsage()
		return fmt.Errorf("frestqctl: unknown command %q", cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `frestqctl - operate on a frestq node's store directly

Usage:
  frestqctl tasks [-limit N]             list the most recent tasks
  frestqctl messages [-limit N]          list the most recent messages
  frestqctl tree [-parents] <task-id>    print a task's subtree (or ancestry with -parents)
  frestqctl show-task <task-id>          print full task detail
  frestqctl show-message <message-id>    print full message detail
  frestqctl show-external <task-id>      print an external task's label and status
  frestqctl finish <task-id> <json>      finish an external task with the given output data
  frestqctl activity -file <path>        summarize an activity.json.log file`)
}

// findTask resolves id by exact match first, falling back to a unique
// prefix match among the most recent rows, mirroring
// Task.id.startswith(task_id) in the original.
func findTask(ctx context.Context, st *store.Store, id string) (*store.Task, error) {
	if t, err := st.GetTask(ctx, nil, id); err == nil {
		return t, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	rows, err := st.ListTasks(ctx, nil, 500)
	if err != nil {
		return nil, err
	}
	var match *store.Task
	for _, t := range rows {
		if len(t.ID) >= len(id) && t.ID[:len(id)] == id {
			if match != nil {
				return nil, fmt.Errorf("frestqctl: task prefix %q is ambiguous", id)
			}
			match = t
		}
	}
	if match == nil {
		return nil, store.ErrNotFound
	}
	return match, nil
}

func findMessage(ctx context.Context, st *store.Store, id string) (*store.Message, error) {
	if m, err := st.GetMessage(ctx, nil, id); err == nil {
		return m, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	rows, err := st.ListMessages(ctx, nil, 500)
	if err != nil {
		return nil, err
	}
	var match *store.Message
	for _, m := range rows {
		if len(m.ID) >= len(id) && m.ID[:len(id)] == id {
			if match != nil {
				return nil, fmt.Errorf("frestqctl: message prefix %q is ambiguous", id)
			}
			match = m
		}
	}
	if match == nil {
		return nil, store.ErrNotFound
	}
	return match, nil
}
