package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Abuxar/alif-luxury/internal/domain"
	"github.com/Abuxar/alif-luxury/internal/gateway"
	"github.com/Abuxar/alif-luxury/internal/orders"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrInvalidLine = errors.New("invalid cart line")
)

type CheckoutService interface {
	CreateSession(ctx context.Context, lines []domain.CheckoutLine, email string) (*gateway.Session, error)
}

type CheckoutServiceImpl struct {
	gateway   gateway.PaymentGateway
	orderRepo orders.Repository
	clientURL string
	currency  string
	log       *logrus.Logger
}

func NewCheckoutService(gw gateway.PaymentGateway, orderRepo orders.Repository, clientURL, currency string, log *logrus.Logger) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		gateway:   gw,
		orderRepo: orderRepo,
		clientURL: clientURL,
		currency:  currency,
		log:       log,
	}
}

func (s *CheckoutServiceImpl) CreateSession(ctx context.Context, lines []domain.CheckoutLine, email string) (*gateway.Session, error) {
	// Validate before touching the gateway; an empty or malformed cart
	// must never produce an outbound call.
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	manifest := make([]domain.ManifestLine, 0, len(lines))
	items := make([]gateway.LineItem, 0, len(lines))
	var totalMinor int64

	for _, line := range lines {
		unitMinor := toMinorUnits(line.UnitPrice)
		items = append(items, gateway.LineItem{
			DisplayName:     line.DisplayName,
			ImageURL:        line.ImageURL,
			UnitAmountMinor: unitMinor,
			Quantity:        line.Quantity,
			Currency:        s.currency,
		})
		manifest = append(manifest, domain.ManifestLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
		totalMinor += unitMinor * int64(line.Quantity)
	}

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}

	session, err := s.gateway.CreateSession(ctx, gateway.CreateSessionParams{
		LineItems:     items,
		CustomerEmail: email,
		SuccessURL:    s.clientURL + "/checkout?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.clientURL + "/checkout?canceled=true",
		Metadata: map[string]string{
			gateway.MetadataManifestKey: string(manifestJSON),
		},
	})
	if err != nil {
		return nil, err
	}

	// Persist the pending order keyed by the session id. Fulfillment reads
	// this first and falls back to the metadata manifest, so a failed
	// insert degrades the flow instead of breaking it.
	order := &domain.Order{
		ID:               uuid.New().String(),
		SessionID:        session.ID,
		Email:            email,
		Lines:            manifest,
		AmountTotalMinor: totalMinor,
		Currency:         s.currency,
		Status:           domain.OrderStatusPending,
		CreatedAt:        time.Now(),
	}
	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		s.log.WithError(err).WithField("session_id", session.ID).
			Error("failed to persist pending order, fulfillment will rely on session metadata")
	}

	return session, nil
}

func validateLines(lines []domain.CheckoutLine) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for i, line := range lines {
		if line.ProductID == "" {
			return fmt.Errorf("%w: line %d has no product id", ErrInvalidLine, i)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("%w: line %d has quantity %d", ErrInvalidLine, i, line.Quantity)
		}
		if line.UnitPrice < 0 {
			return fmt.Errorf("%w: line %d has negative price", ErrInvalidLine, i)
		}
	}
	return nil
}

// toMinorUnits converts a major-unit price to the smallest-unit integer the
// processor expects, rounding to the nearest unit to avoid float drift.
func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * domain.MinorUnitFactor))
}
