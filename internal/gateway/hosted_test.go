package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testParams() CreateSessionParams {
	return CreateSessionParams{
		LineItems: []LineItem{
			{DisplayName: "Silk Kurta", UnitAmountMinor: 500000, Quantity: 2, Currency: "pkr"},
		},
		CustomerEmail: "a@b.com",
		SuccessURL:    "http://localhost/checkout?success=true",
		CancelURL:     "http://localhost/checkout?canceled=true",
		Metadata:      map[string]string{MetadataManifestKey: `[{"id":"P1","quantity":2}]`},
	}
}

func TestCreateSession_Success(t *testing.T) {
	var gotAuth string
	var gotParams CreateSessionParams

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, sessionsPath, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotParams))

		json.NewEncoder(w).Encode(Session{ID: "cs_123", URL: "https://pay.example.com/cs_123"})
	}))
	defer srv.Close()

	gw := NewHostedGateway(srv.URL, "sk_test_key", 5*time.Second, testLogger())
	session, err := gw.CreateSession(context.Background(), testParams())

	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "https://pay.example.com/cs_123", session.URL)
	assert.Equal(t, "Bearer sk_test_key", gotAuth)
	assert.Equal(t, `[{"id":"P1","quantity":2}]`, gotParams.Metadata[MetadataManifestKey])
	assert.Equal(t, int64(500000), gotParams.LineItems[0].UnitAmountMinor)
}

func TestCreateSession_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw := NewHostedGateway(srv.URL, "sk_test_key", 5*time.Second, testLogger())
	session, err := gw.CreateSession(context.Background(), testParams())

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Nil(t, session)
}

func TestCreateSession_RejectedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	gw := NewHostedGateway(srv.URL, "sk_test_key", 5*time.Second, testLogger())
	_, err := gw.CreateSession(context.Background(), testParams())

	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestCreateSession_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing is listening anymore

	gw := NewHostedGateway(srv.URL, "sk_test_key", time.Second, testLogger())
	_, err := gw.CreateSession(context.Background(), testParams())

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateSession_IncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(Session{ID: "cs_123"}) // no url
	}))
	defer srv.Close()

	gw := NewHostedGateway(srv.URL, "sk_test_key", 5*time.Second, testLogger())
	_, err := gw.CreateSession(context.Background(), testParams())

	assert.Error(t, err)
}

func TestCreateSession_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw := NewHostedGateway(srv.URL, "sk_test_key", 5*time.Second, testLogger())

	for i := 0; i < 5; i++ {
		_, err := gw.CreateSession(context.Background(), testParams())
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	}
	hitsBeforeOpen := hits.Load()

	// Breaker is open now: the next call fails fast without a request.
	_, err := gw.CreateSession(context.Background(), testParams())
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Equal(t, hitsBeforeOpen, hits.Load())
}
