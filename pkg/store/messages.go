package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const messageColumns = `
	id, task_id, action, queue_name, sender_url, receiver_url, is_received,
	sender_ssl_cert, receiver_ssl_cert, created_date,
	input_data, input_async_data, output_status,
	pingback_date, expiration_date, info_text
`

// InsertMessage creates a new message row. frestq persists the outbound
// envelope before attempting delivery, so a crash mid-send never loses the
// record of what was supposed to go out.
func (s *Store) InsertMessage(ctx context.Context, tx pgx.Tx, m *Message) error {
	_, err := s.q(tx).Exec(ctx, `
		INSERT INTO message (`+messageColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		m.ID, m.TaskID, m.Action, m.QueueName, m.SenderURL, m.ReceiverURL, m.IsReceived,
		m.SenderSSLCert, m.ReceiverSSLCert, m.CreatedDate,
		m.InputData, m.InputAsyncData, m.OutputStatus,
		m.PingbackDate, m.ExpirationDate, m.InfoText,
	)
	if err != nil {
		return wrapNotFound(err)
	}
	return nil
}

// GetMessage loads a message row by id.
func (s *Store) GetMessage(ctx context.Context, tx pgx.Tx, id string) (*Message, error) {
	rows, err := s.q(tx).Query(ctx, `SELECT `+messageColumns+` FROM message WHERE id = $1`, id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Message])
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return m, nil
}

// UpdateMessageOutputStatus records the HTTP status returned by the receiver.
func (s *Store) UpdateMessageOutputStatus(ctx context.Context, tx pgx.Tx, id string, status int) error {
	_, err := s.q(tx).Exec(ctx, `UPDATE message SET output_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return wrapNotFound(err)
	}
	return nil
}

// ListMessagesForTask returns every message row referencing taskID, most recent first.
func (s *Store) ListMessagesForTask(ctx context.Context, tx pgx.Tx, taskID string) ([]*Message, error) {
	rows, err := s.q(tx).Query(ctx, `
		SELECT `+messageColumns+` FROM message WHERE task_id = $1 ORDER BY created_date DESC
	`, taskID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[Message])
}

// ListTasks returns the most recently created tasks, for CLI inspection.
func (s *Store) ListTasks(ctx context.Context, tx pgx.Tx, limit int) ([]*Task, error) {
	rows, err := s.q(tx).Query(ctx, `
		SELECT `+taskColumns+` FROM task ORDER BY created_date DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[Task])
}

// ListMessages returns the most recently created messages, for CLI inspection.
func (s *Store) ListMessages(ctx context.Context, tx pgx.Tx, limit int) ([]*Message, error) {
	rows, err := s.q(tx).Query(ctx, `
		SELECT `+messageColumns+` FROM message ORDER BY created_date DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[Message])
}
