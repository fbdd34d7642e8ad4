package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func newTestVerifier(secret string, now time.Time) *Verifier {
	v := NewVerifier(secret, DefaultTolerance)
	v.now = func() time.Time { return now }
	return v
}

func TestVerify_ValidSignature(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	v := newTestVerifier(testSecret, now)
	header := Sign(testSecret, now, payload)

	require.NoError(t, v.Verify(payload, header))
}

func TestVerify_TamperedPayload(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)

	v := newTestVerifier(testSecret, now)
	header := Sign(testSecret, now, payload)

	tampered := []byte(`{"id":"evt_2"}`)
	assert.ErrorIs(t, v.Verify(tampered, header), ErrSignatureMismatch)
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Now()
	payload := []byte(`{}`)

	v := newTestVerifier(testSecret, now)
	header := Sign("whsec_other", now, payload)

	assert.ErrorIs(t, v.Verify(payload, header), ErrSignatureMismatch)
}

func TestVerify_MissingHeader(t *testing.T) {
	v := newTestVerifier(testSecret, time.Now())
	assert.ErrorIs(t, v.Verify([]byte(`{}`), ""), ErrMissingSignature)
}

func TestVerify_MalformedHeader(t *testing.T) {
	v := newTestVerifier(testSecret, time.Now())

	tests := []struct {
		name   string
		header string
	}{
		{name: "garbage", header: "not-a-signature"},
		{name: "missing timestamp", header: "v1=deadbeef"},
		{name: "missing signature", header: "t=1700000000"},
		{name: "non-numeric timestamp", header: "t=abc,v1=deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, v.Verify([]byte(`{}`), tt.header), ErrMalformedHeader)
		})
	}
}

func TestVerify_TimestampOutsideTolerance(t *testing.T) {
	now := time.Now()
	payload := []byte(`{}`)
	v := newTestVerifier(testSecret, now)

	old := Sign(testSecret, now.Add(-10*time.Minute), payload)
	assert.ErrorIs(t, v.Verify(payload, old), ErrTimestampTooOld)

	future := Sign(testSecret, now.Add(10*time.Minute), payload)
	assert.ErrorIs(t, v.Verify(payload, future), ErrTimestampTooOld)
}

func TestVerify_WithinTolerance(t *testing.T) {
	now := time.Now()
	payload := []byte(`{}`)
	v := newTestVerifier(testSecret, now)

	header := Sign(testSecret, now.Add(-2*time.Minute), payload)
	assert.NoError(t, v.Verify(payload, header))
}

func TestVerify_NoSecretConfigured(t *testing.T) {
	now := time.Now()
	payload := []byte(`{}`)

	v := newTestVerifier("", now)
	header := Sign(testSecret, now, payload)

	// Must be distinguishable from a bad signature: this is our fault,
	// not the sender's.
	assert.ErrorIs(t, v.Verify(payload, header), ErrNoSigningSecret)
}
