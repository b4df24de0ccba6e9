package transport

import (
	"crypto/subtle"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"strings"
)

// NormalizePEM replaces the tab characters some reverse proxies insert when
// forwarding a client certificate through an HTTP header with newlines, and
// trims surrounding whitespace. Pass stripTabs=false to disable the tab
// replacement step entirely (config.TransportConfig.StripProxyHeaderTabs).
func NormalizePEM(raw string, stripTabs bool) string {
	if stripTabs {
		raw = strings.ReplaceAll(raw, "\t", "\n")
	}
	return strings.TrimSpace(raw)
}

// CertsEqual reports whether two PEM-encoded certificates represent the same
// bytes, compared in constant time so peer-identity checks never leak timing
// information about how much of the expected certificate matched.
func CertsEqual(a, b string) bool {
	ab, aOK := normalizeDER(a)
	bb, bOK := normalizeDER(b)
	if !aOK || !bOK {
		return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
	}
	return subtle.ConstantTimeCompare(ab, bb) == 1
}

// normalizeDER decodes a PEM certificate to its raw DER bytes so that
// formatting differences (line wrap, trailing newline) never cause two
// otherwise-identical certificates to compare unequal.
func normalizeDER(pemStr string) ([]byte, bool) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, false
	}
	return block.Bytes, true
}

// PeerCertificatePEM extracts and PEM-encodes the leaf certificate a peer
// presented during the TLS handshake, or "" if the connection was not TLS or
// carried no client certificate.
func PeerCertificatePEM(state *tls.ConnectionState) string {
	if state == nil || len(state.PeerCertificates) == 0 {
		return ""
	}
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: state.PeerCertificates[0].Raw,
	}))
}

// ParseCertificatePEM parses a single PEM-encoded certificate, used to
// validate a certificate arriving via the proxy header before trusting it.
func ParseCertificatePEM(pemStr string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, ErrInvalidCertificate
	}
	return x509.ParseCertificate(block.Bytes)
}
