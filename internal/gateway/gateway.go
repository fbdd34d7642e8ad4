package gateway

import (
	"context"
	"errors"
)

var (
	// ErrGatewayUnavailable covers network failures, timeouts and an open
	// circuit breaker. Safe for the client to retry; detail stays in logs.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	ErrBadRequest = errors.New("payment gateway rejected the request")
)

// MetadataManifestKey is the session metadata field carrying the serialized
// []domain.ManifestLine. It is the fallback fulfillment channel when the
// pending order record is missing.
const MetadataManifestKey = "cart_items"

type LineItem struct {
	DisplayName     string `json:"name"`
	ImageURL        string `json:"image_url,omitempty"`
	UnitAmountMinor int64  `json:"unit_amount"`
	Quantity        int    `json:"quantity"`
	Currency        string `json:"currency"`
}

type CreateSessionParams struct {
	LineItems     []LineItem        `json:"line_items"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Session is the hosted processor's checkout session: an opaque id plus the
// URL the customer is redirected to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PaymentGateway is the external service boundary. It must not be assumed
// reachable or fast; every call is context-bounded.
type PaymentGateway interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
}
