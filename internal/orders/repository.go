package orders

import (
	"context"
	"errors"

	"github.com/Abuxar/alif-luxury/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateEvent means this event id was already recorded; the
	// caller must not apply its side effects again.
	ErrDuplicateEvent = errors.New("event already processed")

	// ErrAlreadyFulfilled means the order left PENDING before this call.
	ErrAlreadyFulfilled = errors.New("order already fulfilled")
)

type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)

	// MarkFulfilled transitions PENDING -> FULFILLED and returns the order.
	// The transition is conditional on the current status, so only one
	// caller ever wins for a given session.
	MarkFulfilled(ctx context.Context, sessionID string) (*domain.Order, error)

	// RecordEvent durably records a gateway event id. Returns
	// ErrDuplicateEvent if it was recorded before.
	RecordEvent(ctx context.Context, eventID, sessionID string) error
}
