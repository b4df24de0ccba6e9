package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const samplePEM = `-----BEGIN CERTIFICATE-----
MIIBIjCB0KADAgECAgEBMAoGCCqGSM49BAMCMAAwHhcNMjUwMTAxMDAwMDAwWhcN
MzUwMTAxMDAwMDAwWjAAMFkwEwYHKoZIzj0CAQYIKoZIzj0DAQcDQgAEhkdvU2mT
eL6SdX7Ym8FQ2i4MDyZTChQk9qfRZXWd1TSFE+RHVQyzF9b3aIvXWQaU5vF3iq+S
ltDpLm/0kkxcUaMQMA4wDAYDVR0TAQH/BAIwADAKBggqhkjOPQQDAgNIADBFAiEA
kS0/4gk1VxY2W8ZUuPRCoNTGzYB+A1pXW4E9q+OdVuUCIC0nZbN2eGk6YyycaM1k
2dC0f9FJbyAw49r3A1bQxyUS
-----END CERTIFICATE-----
`

func TestNormalizePEM(t *testing.T) {
	withTabs := "-----BEGIN CERTIFICATE-----\t\tMIIB...\t\t-----END CERTIFICATE-----"
	got := NormalizePEM(withTabs, true)
	assert.NotContains(t, got, "\t")

	untouched := NormalizePEM(withTabs, false)
	assert.Contains(t, untouched, "\t")
}

func TestCertsEqual(t *testing.T) {
	assert.True(t, CertsEqual(samplePEM, samplePEM))
	assert.False(t, CertsEqual(samplePEM, ""))
	assert.False(t, CertsEqual("not pem", "also not pem, but different"))
	assert.True(t, CertsEqual("same non-pem text", "same non-pem text"))
}
