package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const taskColumns = `
	id, task_type, task_metadata, label, action, queue_name, status,
	is_received, is_local, parent_id, "order",
	receiver_url, sender_url, sender_ssl_cert, receiver_ssl_cert,
	created_date, last_modified_date,
	input_data, input_async_data, output_data, output_async_data, reservation_data,
	pingback_date, pingback_pending, expiration_date, expiration_pending
`

// InsertTask creates a new task row.
func (s *Store) InsertTask(ctx context.Context, tx pgx.Tx, t *Task) error {
	_, err := s.q(tx).Exec(ctx, `
		INSERT INTO task (`+taskColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
	`,
		t.ID, t.TaskType, t.TaskMetadata, t.Label, t.Action, t.QueueName, t.Status,
		t.IsReceived, t.IsLocal, t.ParentID, t.Order,
		t.ReceiverURL, t.SenderURL, t.SenderSSLCert, t.ReceiverSSLCert,
		t.CreatedDate, t.LastModifiedDate,
		t.InputData, t.InputAsyncData, t.OutputData, t.OutputAsyncData, t.ReservationData,
		t.PingbackDate, t.PingbackPending, t.ExpirationDate, t.ExpirationPending,
	)
	if err != nil {
		return wrapNotFound(err)
	}
	return nil
}

// GetTask loads a task row by id.
func (s *Store) GetTask(ctx context.Context, tx pgx.Tx, id string) (*Task, error) {
	rows, err := s.q(tx).Query(ctx, `SELECT `+taskColumns+` FROM task WHERE id = $1`, id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	t, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Task])
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return t, nil
}

// UpdateTask persists every mutable column of t. Callers are expected to have
// set LastModifiedDate before calling.
func (s *Store) UpdateTask(ctx context.Context, tx pgx.Tx, t *Task) error {
	_, err := s.q(tx).Exec(ctx, `
		UPDATE task SET
			task_type = $2, task_metadata = $3, label = $4, action = $5,
			queue_name = $6, status = $7, is_received = $8, is_local = $9,
			parent_id = $10, "order" = $11,
			receiver_url = $12, sender_url = $13,
			sender_ssl_cert = $14, receiver_ssl_cert = $15,
			last_modified_date = $16,
			input_data = $17, input_async_data = $18,
			output_data = $19, output_async_data = $20, reservation_data = $21,
			pingback_date = $22, pingback_pending = $23,
			expiration_date = $24, expiration_pending = $25
		WHERE id = $1
	`,
		t.ID, t.TaskType, t.TaskMetadata, t.Label, t.Action,
		t.QueueName, t.Status, t.IsReceived, t.IsLocal,
		t.ParentID, t.Order,
		t.ReceiverURL, t.SenderURL,
		t.SenderSSLCert, t.ReceiverSSLCert,
		t.LastModifiedDate,
		t.InputData, t.InputAsyncData,
		t.OutputData, t.OutputAsyncData, t.ReservationData,
		t.PingbackDate, t.PingbackPending,
		t.ExpirationDate, t.ExpirationPending,
	)
	if err != nil {
		return wrapNotFound(err)
	}
	return nil
}

// GetChildren returns the direct subtasks of parentID ordered by "order".
func (s *Store) GetChildren(ctx context.Context, tx pgx.Tx, parentID string) ([]*Task, error) {
	rows, err := s.q(tx).Query(ctx, `
		SELECT `+taskColumns+` FROM task
		WHERE parent_id = $1
		ORDER BY "order" NULLS LAST, created_date
	`, parentID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[Task])
}

// GetParent returns the parent of t, or ErrNotFound if t is a root task.
func (s *Store) GetParent(ctx context.Context, tx pgx.Tx, t *Task) (*Task, error) {
	if t.ParentID == nil {
		return nil, ErrNotFound
	}
	return s.GetTask(ctx, tx, *t.ParentID)
}

// GetSiblings returns every task sharing t's parent, t included.
func (s *Store) GetSiblings(ctx context.Context, tx pgx.Tx, t *Task) ([]*Task, error) {
	if t.ParentID == nil {
		return []*Task{t}, nil
	}
	return s.GetChildren(ctx, tx, *t.ParentID)
}

// GetNext returns the next sibling after t in order, or ErrNotFound if t is last.
func (s *Store) GetNext(ctx context.Context, tx pgx.Tx, t *Task) (*Task, error) {
	siblings, err := s.GetSiblings(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	for i, sib := range siblings {
		if sib.ID == t.ID && i+1 < len(siblings) {
			return siblings[i+1], nil
		}
	}
	return nil, ErrNotFound
}

// GetPrev returns the sibling immediately before t in order, or ErrNotFound if t is first.
func (s *Store) GetPrev(ctx context.Context, tx pgx.Tx, t *Task) (*Task, error) {
	siblings, err := s.GetSiblings(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	for i, sib := range siblings {
		if sib.ID == t.ID && i > 0 {
			return siblings[i-1], nil
		}
	}
	return nil, ErrNotFound
}

// NextUnfinishedSubtask returns the first direct subtask of parent whose
// status is not "finished", ordered by "order". Used by sequential tasks.
func (s *Store) NextUnfinishedSubtask(ctx context.Context, tx pgx.Tx, parentID string) (*Task, error) {
	rows, err := s.q(tx).Query(ctx, `
		SELECT `+taskColumns+` FROM task
		WHERE parent_id = $1 AND status != $2
		ORDER BY "order" NULLS LAST, created_date
		LIMIT 1
	`, parentID, StatusFinished)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	t, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Task])
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return t, nil
}

// CountUnfinishedSubtasks counts direct subtasks not yet "finished". Used by
// parallel and synchronized tasks.
func (s *Store) CountUnfinishedSubtasks(ctx context.Context, tx pgx.Tx, parentID string) (int, error) {
	var n int
	err := s.q(tx).QueryRow(ctx, `
		SELECT count(*) FROM task WHERE parent_id = $1 AND status != $2
	`, parentID, StatusFinished).Scan(&n)
	if err != nil {
		return 0, wrapNotFound(err)
	}
	return n, nil
}

// ErroredSubtasks returns direct subtasks currently in the "error" status.
func (s *Store) ErroredSubtasks(ctx context.Context, tx pgx.Tx, parentID string) ([]*Task, error) {
	rows, err := s.q(tx).Query(ctx, `
		SELECT `+taskColumns+` FROM task WHERE parent_id = $1 AND status = $2
	`, parentID, StatusError)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[Task])
}
