package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
)

// Order is created when a checkout session is opened and transitioned to
// FULFILLED exactly once by the webhook. SessionID is the gateway's opaque
// session id and carries a unique index, which makes the pending->fulfilled
// transition the natural idempotency point for fulfillment.
type Order struct {
	ID               string         `bson:"_id"`
	SessionID        string         `bson:"session_id"`
	Email            string         `bson:"email,omitempty"`
	Lines            []ManifestLine `bson:"lines"`
	AmountTotalMinor int64          `bson:"amount_total_minor"`
	Currency         string         `bson:"currency"`
	Status           OrderStatus    `bson:"status"`
	CreatedAt        time.Time      `bson:"created_at"`
	FulfilledAt      *time.Time     `bson:"fulfilled_at,omitempty"`
}
