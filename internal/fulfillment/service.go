package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Abuxar/alif-luxury/internal/catalog"
	"github.com/Abuxar/alif-luxury/internal/domain"
	"github.com/Abuxar/alif-luxury/internal/gateway"
	"github.com/Abuxar/alif-luxury/internal/metrics"
	"github.com/Abuxar/alif-luxury/internal/orders"
)

type Outcome string

const (
	OutcomeIgnored       Outcome = "ignored"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeFulfilled     Outcome = "fulfilled"
	OutcomeManifestError Outcome = "manifest_error"
)

type Result struct {
	Outcome      Outcome
	LinesApplied int
	LinesSkipped int
}

type Service interface {
	HandleEvent(ctx context.Context, event *Event) Result
}

type ServiceImpl struct {
	catalog   catalog.Repository
	orderRepo orders.Repository
	seen      SeenCache // optional fast path, may be nil
	notifier  Notifier
	metrics   *metrics.Metrics
	log       *logrus.Logger
}

func NewService(cat catalog.Repository, orderRepo orders.Repository, seen SeenCache, notifier Notifier, m *metrics.Metrics, log *logrus.Logger) *ServiceImpl {
	return &ServiceImpl{
		catalog:   cat,
		orderRepo: orderRepo,
		seen:      seen,
		notifier:  notifier,
		metrics:   m,
		log:       log,
	}
}

// HandleEvent processes a signature-verified event. It never returns an
// error: by the gateway's contract every verified event is acknowledged,
// so failures past this point are logged, counted and pushed to the
// reconciliation topic instead of bubbling into the response.
func (s *ServiceImpl) HandleEvent(ctx context.Context, event *Event) Result {
	if event.Type != EventCheckoutCompleted {
		s.log.WithField("type", event.Type).Debug("ignoring event type")
		s.metrics.WebhookEvents.WithLabelValues(string(OutcomeIgnored)).Inc()
		return Result{Outcome: OutcomeIgnored}
	}

	session := event.Data.Object
	logger := s.log.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"session_id": session.ID,
	})

	if s.alreadySeen(ctx, event.ID, logger) {
		s.metrics.WebhookEvents.WithLabelValues(string(OutcomeDuplicate)).Inc()
		return Result{Outcome: OutcomeDuplicate}
	}

	// Durable idempotency guard: first writer of this event id wins,
	// every redelivery short-circuits here.
	err := s.orderRepo.RecordEvent(ctx, event.ID, session.ID)
	if errors.Is(err, orders.ErrDuplicateEvent) {
		logger.Info("duplicate event delivery, skipping")
		s.metrics.WebhookEvents.WithLabelValues(string(OutcomeDuplicate)).Inc()
		return Result{Outcome: OutcomeDuplicate}
	}
	if err != nil {
		// Still acknowledged; without the durable record a redelivery
		// could double-decrement, so this goes to reconciliation
		// instead of being applied blind.
		logger.WithError(err).Error("failed to record event, deferring to reconciliation")
		s.metrics.WebhookEvents.WithLabelValues(string(OutcomeManifestError)).Inc()
		s.notifier.ReconciliationNeeded(ctx, ReconciliationAlert{
			SessionID: session.ID,
			EventID:   event.ID,
			Reason:    "event record failed: " + err.Error(),
			CreatedAt: time.Now(),
		})
		return Result{Outcome: OutcomeManifestError}
	}

	manifest, err := s.recoverManifest(ctx, session, logger)
	if err != nil {
		logger.WithError(err).Error("no usable manifest, manual reconciliation required")
		s.metrics.WebhookEvents.WithLabelValues(string(OutcomeManifestError)).Inc()
		s.notifier.ReconciliationNeeded(ctx, ReconciliationAlert{
			SessionID: session.ID,
			EventID:   event.ID,
			Reason:    "manifest unavailable: " + err.Error(),
			CreatedAt: time.Now(),
		})
		return Result{Outcome: OutcomeManifestError}
	}

	applied, skipped := s.applyDecrements(ctx, manifest, logger)

	if _, err := s.orderRepo.MarkFulfilled(ctx, session.ID); err != nil &&
		!errors.Is(err, orders.ErrOrderNotFound) && !errors.Is(err, orders.ErrAlreadyFulfilled) {
		logger.WithError(err).Error("failed to mark order fulfilled")
	}

	logger.WithFields(logrus.Fields{
		"lines_applied": applied,
		"lines_skipped": skipped,
	}).Info("order fulfilled")
	s.metrics.WebhookEvents.WithLabelValues(string(OutcomeFulfilled)).Inc()
	s.notifier.OrderFulfilled(ctx, FulfilledNotification{
		SessionID:    session.ID,
		EventID:      event.ID,
		LinesApplied: applied,
		LinesSkipped: skipped,
		FulfilledAt:  time.Now(),
	})

	return Result{Outcome: OutcomeFulfilled, LinesApplied: applied, LinesSkipped: skipped}
}

// alreadySeen consults the redis fast path. Any cache failure falls through
// to the durable guard.
func (s *ServiceImpl) alreadySeen(ctx context.Context, eventID string, logger *logrus.Entry) bool {
	if s.seen == nil {
		return false
	}
	first, err := s.seen.MarkSeen(ctx, eventID)
	if err != nil {
		logger.WithError(err).Warn("seen-cache unavailable, relying on durable dedup")
		return false
	}
	return !first
}

// recoverManifest prefers the pending order persisted at session creation
// and falls back to the manifest embedded in session metadata.
func (s *ServiceImpl) recoverManifest(ctx context.Context, session CheckoutSession, logger *logrus.Entry) ([]domain.ManifestLine, error) {
	order, err := s.orderRepo.GetOrderBySessionID(ctx, session.ID)
	if err == nil && len(order.Lines) > 0 {
		return order.Lines, nil
	}
	if err != nil && !errors.Is(err, orders.ErrOrderNotFound) {
		logger.WithError(err).Warn("order lookup failed, trying metadata manifest")
	}

	raw, ok := session.Metadata[gateway.MetadataManifestKey]
	if !ok || raw == "" {
		return nil, errors.New("no pending order and no metadata manifest")
	}

	var manifest []domain.ManifestLine
	if err := json.Unmarshal([]byte(raw), &manifest); err != nil {
		return nil, errors.New("metadata manifest is malformed")
	}
	if len(manifest) == 0 {
		return nil, errors.New("metadata manifest is empty")
	}
	return manifest, nil
}

// applyDecrements processes lines independently: a missing product or a
// failed write skips that line and moves on, it never aborts the batch.
func (s *ServiceImpl) applyDecrements(ctx context.Context, manifest []domain.ManifestLine, logger *logrus.Entry) (applied, skipped int) {
	for _, line := range manifest {
		lineLogger := logger.WithFields(logrus.Fields{
			"product_id": line.ProductID,
			"quantity":   line.Quantity,
		})
		if line.ProductID == "" || line.Quantity < 1 {
			lineLogger.Warn("skipping malformed manifest line")
			s.metrics.InventoryLines.WithLabelValues("skipped").Inc()
			skipped++
			continue
		}

		err := s.catalog.DecrementInventory(ctx, line.ProductID, line.Quantity)
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			lineLogger.Warn("product not found, skipping line")
			s.metrics.InventoryLines.WithLabelValues("skipped").Inc()
			skipped++
		case err != nil:
			lineLogger.WithError(err).Error("failed to decrement inventory")
			s.metrics.InventoryLines.WithLabelValues("skipped").Inc()
			skipped++
		default:
			s.metrics.InventoryLines.WithLabelValues("applied").Inc()
			applied++
		}
	}
	return applied, skipped
}
