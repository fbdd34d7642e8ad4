package fulfillment

import (
	"encoding/json"
	"fmt"
)

// EventCheckoutCompleted is the only event type that mutates inventory.
// Everything else is acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

type CheckoutSession struct {
	ID            string            `json:"id"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object CheckoutSession `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a verified raw payload. It never runs before signature
// verification.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("event missing id or type")
	}
	return &event, nil
}
