package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the webhook signature in the form
// "t=<unix seconds>,v1=<hex hmac-sha256>". The signed payload is
// "<t>.<raw body>", so neither the timestamp nor the body can be swapped
// out without invalidating the signature.
const SignatureHeader = "Pay-Signature"

const DefaultTolerance = 5 * time.Minute

var (
	// ErrNoSigningSecret means the verifier cannot verify anything at all.
	// Callers must treat this as an internal fault (retry/alert), not as a
	// bad signature.
	ErrNoSigningSecret = errors.New("webhook signing secret not configured")

	ErrMissingSignature  = errors.New("missing signature header")
	ErrMalformedHeader   = errors.New("malformed signature header")
	ErrTimestampTooOld   = errors.New("signature timestamp outside tolerance")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &Verifier{secret: key, tolerance: tolerance, now: time.Now}
}

// Verify checks header against the raw, unparsed request body. It must run
// before any business logic touches the payload.
func (v *Verifier) Verify(payload []byte, header string) error {
	if len(v.secret) == 0 {
		return ErrNoSigningSecret
	}
	if header == "" {
		return ErrMissingSignature
	}

	ts, sig, err := parseHeader(header)
	if err != nil {
		return err
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return ErrTimestampTooOld
	}

	expected := computeSignature(v.secret, ts, payload)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrSignatureMismatch
	}
	return nil
}

func parseHeader(header string) (ts int64, sig string, err error) {
	for _, part := range strings.Split(header, ",") {
		k, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return 0, "", ErrMalformedHeader
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, "", ErrMalformedHeader
			}
		case "v1":
			sig = val
		}
	}
	if ts == 0 || sig == "" {
		return 0, "", ErrMalformedHeader
	}
	return ts, sig, nil
}

func computeSignature(secret []byte, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign produces a header value for payload at time t. Used by tests and by
// local tooling that replays events against a dev server.
func Sign(secret string, t time.Time, payload []byte) string {
	ts := t.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, computeSignature([]byte(secret), ts, payload))
}
