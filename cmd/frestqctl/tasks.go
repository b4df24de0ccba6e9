package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sequentech/frestq-go/pkg/store"
)

func cmdListTasks(ctx context.Context, st *store.Store, args []string) error {
	fs := newFlagSet("tasks")
	limit := fs.Int("limit", 50, "maximum number of rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, err := st.ListTasks(ctx, nil, *limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "ID\tSENDER\tACTION\tQUEUE\tTYPE\tSTATUS\tCREATED")
	for _, t := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), t.SenderURL, t.Action, t.QueueName, t.TaskType, t.Status,
			t.CreatedDate.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func cmdListMessages(ctx context.Context, st *store.Store, args []string) error {
	fs := newFlagSet("messages")
	limit := fs.Int("limit", 50, "maximum number of rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, err := st.ListMessages(ctx, nil, *limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "ID\tTASK\tACTION\tQUEUE\tSENDER\tRECEIVER\tCREATED")
	for _, m := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(m.ID), shortID(m.TaskID), m.Action, m.QueueName, m.SenderURL, m.ReceiverURL,
			m.CreatedDate.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
