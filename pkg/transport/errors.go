package transport

import "errors"

var (
	ErrInvalidCertificate = errors.New("transport: invalid certificate")
	ErrSSLRequired        = errors.New("transport: SSL connection required")
	ErrInvalidEnvelope    = errors.New("transport: invalid message envelope")
	ErrUnknownAction      = errors.New("transport: no handler for action and queue")
	ErrSendFailed         = errors.New("transport: failed to deliver message")

	// ErrCertificateMismatch is the security error raised whenever a
	// presented sender certificate does not match the stored counterpart,
	// on an update_task (against the task's receiver certificate) or on a
	// same-URL local message (against this node's own certificate). No
	// state is changed before this error is returned.
	ErrCertificateMismatch = errors.New("transport: sender certificate mismatch")
)
