package transport

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sequentech/frestq-go/pkg/config"
)

func TestPeerCertificateFromProxyHeader(t *testing.T) {
	h := &Handler{cfg: config.TransportConfig{
		ProxyCertHeader:       "X-Sender-SSL-Certificate",
		StripProxyHeaderTabs:  true,
	}}

	req := httptest.NewRequest("POST", "/internal.frestq/", nil)
	req.Header.Set("X-Sender-SSL-Certificate", "-----BEGIN CERTIFICATE-----\t\tABC\t\t-----END CERTIFICATE-----")

	got := h.peerCertificate(req)
	assert.NotContains(t, got, "\t")
	assert.Contains(t, got, "BEGIN CERTIFICATE")
}

func TestPeerCertificateAbsent(t *testing.T) {
	h := &Handler{cfg: config.TransportConfig{ProxyCertHeader: "X-Sender-SSL-Certificate"}}
	req := httptest.NewRequest("POST", "/internal.frestq/", nil)

	assert.Equal(t, "", h.peerCertificate(req))
}
