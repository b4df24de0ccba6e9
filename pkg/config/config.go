// Package config collects frestq's environment-driven configuration structs,
// following the env-tag convention from the teacher's pkg/db/config.go and
// pkg/mailer/config.go, loaded with github.com/caarlos0/env/v11.
package config

import (
	"time"

	"github.com/sequentech/frestq-go/pkg/db"
)

// StoreConfig configures the task/message persistence layer. It embeds the
// generic Postgres pool settings from pkg/db.
type StoreConfig struct {
	db.Config
}

// TransportConfig configures outbound delivery and inbound message intake.
type TransportConfig struct {
	// RootURL is this node's own externally reachable queue root, sent as
	// sender_url on every outbound message and used to detect local
	// (self-addressed) deliveries. Example: http://127.0.0.1:5000/api/queues
	RootURL string `env:"ROOT_URL,required"`

	// SSLCertPath/SSLKeyPath identify this node to peers over mTLS. Both
	// empty means this node presents no client certificate.
	SSLCertPath string `env:"SSL_CERT_PATH"`
	SSLKeyPath  string `env:"SSL_KEY_PATH"`

	// AllowOnlySSLConnections rejects any inbound message not carrying a
	// peer certificate, either from the TLS handshake itself or from the
	// configured proxy header.
	AllowOnlySSLConnections bool `env:"ALLOW_ONLY_SSL_CONNECTIONS" envDefault:"false"`

	// ProxyCertHeader is the HTTP header a reverse proxy terminating TLS is
	// expected to forward the peer certificate in, PEM-encoded.
	ProxyCertHeader string `env:"PROXY_CERT_HEADER" envDefault:"X-Sender-SSL-Certificate"`

	// StripProxyHeaderTabs strips literal tab characters some proxies
	// insert into forwarded PEM headers before comparing certificates.
	StripProxyHeaderTabs bool `env:"PROXY_CERT_HEADER_STRIP_TABS" envDefault:"true"`

	// SendTimeout bounds a single outbound delivery attempt. frestq makes
	// no retry attempt on failure (see DESIGN.md), so this only protects
	// against a hung peer.
	SendTimeout time.Duration `env:"TRANSPORT_SEND_TIMEOUT" envDefault:"30s"`
}

// SchedulerConfig configures the per-queue worker pool and the reservation
// protocol's timing.
type SchedulerConfig struct {
	// ReservationTimeout is how long a synchronized subtask reservation is
	// held before it is cancelled and retried, matching RESERVATION_TIMEOUT
	// in the original (default 60s).
	ReservationTimeout time.Duration `env:"RESERVATION_TIMEOUT" envDefault:"60s"`

	// MaxWorkers is the default worker count for any queue without an
	// explicit override.
	MaxWorkers int `env:"SCHEDULER_MAX_WORKERS" envDefault:"10"`

	// MisfireGrace bounds how stale a submit-now job may be before the
	// worker skips it instead of running it late.
	MisfireGrace time.Duration `env:"SCHEDULER_MISFIRE_GRACE" envDefault:"24h"`
}
