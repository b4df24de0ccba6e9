package transport

import (
	"crypto/tls"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sequentech/frestq-go/pkg/config"
	"github.com/sequentech/frestq-go/pkg/registry"
	"github.com/sequentech/frestq-go/pkg/scheduler"
	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/wire"
)

// DispatchFunc is the scheduler function name a Handler submits every
// accepted message to, for asynchronous processing off the request
// goroutine. pkg/task/pkg/protocol register the handler for this name,
// keeping transport free of a dependency on the task engine.
const DispatchFunc = "frestq.dispatch_message"

// Handler is the inbound half of the transport component: a
// chi.Router-mountable POST /{queue}/ endpoint reproducing
// original_source/frestq/api.py: post_message.
type Handler struct {
	store     *store.Store
	registry  *registry.Registry
	scheduler *scheduler.Scheduler
	cfg       config.TransportConfig
	logger    *slog.Logger

	// localCert is this node's own certificate, PEM-encoded, read from
	// cfg.SSLCertPath. A same-URL "local" message's presented certificate
	// is checked against it instead of against any stored task row.
	localCert string
}

// NewHandler builds the inbound message intake handler.
func NewHandler(st *store.Store, reg *registry.Registry, sch *scheduler.Scheduler, cfg config.TransportConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var localCert string
	if cfg.SSLCertPath != "" {
		if raw, err := os.ReadFile(cfg.SSLCertPath); err == nil {
			localCert = NormalizePEM(string(raw), false)
		} else {
			logger.Warn("failed to read local SSL certificate", slog.String("path", cfg.SSLCertPath), slog.Any("error", err))
		}
	}
	return &Handler{store: st, registry: reg, scheduler: sch, cfg: cfg, logger: logger, localCert: localCert}
}

// Mount registers the queue intake route on r, under whatever prefix the
// caller chooses (the original mounts it at /api/queues/<queue_name>/).
func (h *Handler) Mount(r chi.Router) {
	r.Post("/{queue}/", h.postMessage)
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	ctx := r.Context()

	var env wire.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if !env.RequiredFieldsPresent() {
		http.Error(w, "message_id, action and sender_url are required", http.StatusBadRequest)
		return
	}

	senderCert := h.peerCertificate(r)
	if h.cfg.AllowOnlySSLConnections && senderCert == "" {
		http.Error(w, "SSL connection required", http.StatusForbidden)
		return
	}

	if _, ok := h.registry.Lookup(env.Action, queue); !ok {
		http.Error(w, "no handler registered for this action and queue", http.StatusNotFound)
		return
	}

	isLocal := env.SenderURL == h.cfg.RootURL

	var msg *store.Message
	if isLocal {
		// Same-URL deliveries are checked against this node's own
		// certificate rather than a stored task row (spec: "the stored
		// counterpart certificate ... of the local endpoint on same-URL
		// local messages"). Any mismatch is fatal and no state changes.
		if h.localCert != "" && !CertsEqual(senderCert, h.localCert) {
			http.Error(w, "sender certificate mismatch", http.StatusForbidden)
			return
		}

		existing, err := h.store.GetMessage(ctx, nil, env.MessageID)
		if err != nil {
			http.Error(w, "local message not found", http.StatusNotFound)
			return
		}
		msg = existing
	} else {
		status := http.StatusOK
		msg = &store.Message{
			ID:              env.MessageID,
			TaskID:          env.TaskID,
			Action:          env.Action,
			QueueName:       queue,
			SenderURL:       env.SenderURL,
			ReceiverURL:     h.cfg.RootURL,
			IsReceived:      true,
			SenderSSLCert:   senderCert,
			CreatedDate:     time.Now(),
			InputData:       env.Data,
			InputAsyncData:  env.AsyncData,
			OutputStatus:    &status,
			InfoText:        env.Info,
		}
		if env.PingbackDate != nil {
			t := env.PingbackDate.Std()
			msg.PingbackDate = &t
		}
		if env.ExpirationDate != nil {
			t := env.ExpirationDate.Std()
			msg.ExpirationDate = &t
		}
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if err := h.store.InsertMessage(ctx, nil, msg); err != nil {
			http.Error(w, "failed to record message", http.StatusInternalServerError)
			return
		}
	}

	if err := h.scheduler.SubmitNow(ctx, nil, queue, DispatchFunc, DispatchArgs{MessageID: msg.ID, Queue: queue}); err != nil {
		h.logger.ErrorContext(ctx, "failed to schedule message dispatch",
			slog.String("message_id", msg.ID), slog.Any("error", err))
		http.Error(w, "failed to schedule message", http.StatusInternalServerError)
		return
	}

	outputStatus := http.StatusOK
	if msg.OutputStatus != nil {
		outputStatus = *msg.OutputStatus
	}
	w.WriteHeader(outputStatus)
}

// DispatchArgs is the payload frestq.dispatch_message receives.
type DispatchArgs struct {
	MessageID string `json:"message_id"`
	Queue     string `json:"queue"`
}

// peerCertificate extracts the sender's certificate either from the TLS
// handshake itself or, when terminated by a reverse proxy, from the
// configured forwarding header.
func (h *Handler) peerCertificate(r *http.Request) string {
	if r.TLS != nil {
		if pemCert := PeerCertificatePEM((*tls.ConnectionState)(r.TLS)); pemCert != "" {
			return pemCert
		}
	}
	if header := r.Header.Get(h.cfg.ProxyCertHeader); header != "" {
		return NormalizePEM(header, h.cfg.StripProxyHeaderTabs)
	}
	return ""
}
