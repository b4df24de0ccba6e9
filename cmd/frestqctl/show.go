package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sequentech/frestq-go/pkg/store"
)

func cmdTaskTree(ctx context.Context, st *store.Store, args []string) error {
	fs := newFlagSet("tree")
	withParents := fs.Bool("parents", false, "walk up to the root instead of down into children")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("frestqctl: tree requires a task id")
	}

	t, err := findTask(ctx, st, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("frestqctl: task %s not found: %w", fs.Arg(0), err)
	}

	if *withParents {
		for {
			printTaskLine(t, 0)
			if t.ParentID == nil {
				return nil
			}
			t, err = st.GetTask(ctx, nil, *t.ParentID)
			if err != nil {
				return err
			}
		}
	}
	return printSubtree(ctx, st, t, 0)
}

func printSubtree(ctx context.Context, st *store.Store, t *store.Task, depth int) error {
	printTaskLine(t, depth)
	children, err := st.GetChildren(ctx, nil, t.ID)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := printSubtree(ctx, st, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func printTaskLine(t *store.Task, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Printf("%s- %s [%s] %s/%s %s\n", indent, shortID(t.ID), t.TaskType, t.QueueName, t.Action, t.Status)
}

func cmdShowTask(ctx context.Context, st *store.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("frestqctl: show-task requires a task id")
	}
	t, err := findTask(ctx, st, args[0])
	if err != nil {
		return fmt.Errorf("frestqctl: task %s not found: %w", args[0], err)
	}
	return printJSON(t)
}

func cmdShowMessage(ctx context.Context, st *store.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("frestqctl: show-message requires a message id")
	}
	m, err := findMessage(ctx, st, args[0])
	if err != nil {
		return fmt.Errorf("frestqctl: message %s not found: %w", args[0], err)
	}
	return printJSON(m)
}

func cmdShowExternalTask(ctx context.Context, st *store.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("frestqctl: show-external requires a task id")
	}
	t, err := findTask(ctx, st, args[0])
	if err != nil {
		return fmt.Errorf("frestqctl: task %s not found: %w", args[0], err)
	}
	if t.TaskType != store.TaskTypeExternal {
		return fmt.Errorf("frestqctl: task %s is not external", shortID(t.ID))
	}
	printTaskLine(t, 0)
	fmt.Printf("label: %s\n", t.Label)
	fmt.Printf("status: %s\n", t.Status)
	return nil
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
