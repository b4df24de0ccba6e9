package store

import (
	"encoding/json"
	"time"
)

// TaskType identifies which task-engine composition a Task row drives.
type TaskType string

const (
	TaskTypeSimple       TaskType = "simple"
	TaskTypeSequential   TaskType = "sequential"
	TaskTypeParallel     TaskType = "parallel"
	TaskTypeSynchronized TaskType = "synchronized"
	TaskTypeExternal     TaskType = "external"
)

// TaskStatus is the task state-machine value stored on the row.
type TaskStatus string

const (
	StatusCreated   TaskStatus = "created"
	StatusSent      TaskStatus = "sent"
	StatusSyncing   TaskStatus = "syncing"
	StatusReserved  TaskStatus = "reserved"
	StatusConfirmed TaskStatus = "confirmed"
	StatusExecuting TaskStatus = "executing"
	StatusFinished  TaskStatus = "finished"
	StatusError     TaskStatus = "error"
)

// Task is the relational row backing every node of a task tree.
//
//nolint:betteralign // column order mirrors the original schema for readability
type Task struct {
	ID       string   `db:"id"`
	TaskType TaskType `db:"task_type"`

	TaskMetadata json.RawMessage `db:"task_metadata"`

	Label     string `db:"label"`
	Action    string `db:"action"`
	QueueName string `db:"queue_name"`
	Status    TaskStatus `db:"status"`

	IsReceived bool `db:"is_received"`
	IsLocal    bool `db:"is_local"`

	ParentID *string `db:"parent_id"`
	Order    *int    `db:"order"`

	ReceiverURL     string `db:"receiver_url"`
	SenderURL       string `db:"sender_url"`
	SenderSSLCert   string `db:"sender_ssl_cert"`
	ReceiverSSLCert string `db:"receiver_ssl_cert"`

	CreatedDate      time.Time `db:"created_date"`
	LastModifiedDate time.Time `db:"last_modified_date"`

	InputData       json.RawMessage `db:"input_data"`
	InputAsyncData  json.RawMessage `db:"input_async_data"`
	OutputData      json.RawMessage `db:"output_data"`
	OutputAsyncData json.RawMessage `db:"output_async_data"`
	ReservationData json.RawMessage `db:"reservation_data"`

	PingbackDate     *time.Time `db:"pingback_date"`
	PingbackPending  bool       `db:"pingback_pending"`
	ExpirationDate   *time.Time `db:"expiration_date"`
	ExpirationPending bool      `db:"expiration_pending"`

	// Error and Propagate are not persisted columns; they hold the result of
	// running a handler for the duration of a single Execute call, mirroring
	// BaseTask.error / BaseTask.propagate in the original implementation.
	Error      error `db:"-"`
	Propagate  bool  `db:"-"`
}

// Message is the relational row recording one sent or received wire envelope.
type Message struct {
	ID        string `db:"id"`
	TaskID    string `db:"task_id"`
	Action    string `db:"action"`
	QueueName string `db:"queue_name"`

	SenderURL       string `db:"sender_url"`
	ReceiverURL     string `db:"receiver_url"`
	IsReceived      bool   `db:"is_received"`
	SenderSSLCert   string `db:"sender_ssl_cert"`
	ReceiverSSLCert string `db:"receiver_ssl_cert"`

	CreatedDate time.Time `db:"created_date"`

	InputData      json.RawMessage `db:"input_data"`
	InputAsyncData json.RawMessage `db:"input_async_data"`
	OutputStatus   *int            `db:"output_status"`

	PingbackDate   *time.Time `db:"pingback_date"`
	ExpirationDate *time.Time `db:"expiration_date"`
	InfoText       string     `db:"info_text"`
}
