package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Abuxar/alif-luxury/internal/fulfillment"
	"github.com/Abuxar/alif-luxury/internal/gateway"
	"github.com/Abuxar/alif-luxury/internal/metrics"
)

const maxWebhookBodySize = 1 << 20 // 1MB

type WebhookHandler struct {
	verifier *gateway.Verifier
	service  fulfillment.Service
	metrics  *metrics.Metrics
	timeout  time.Duration
	log      *logrus.Logger
}

func NewWebhookHandler(verifier *gateway.Verifier, service fulfillment.Service, m *metrics.Metrics, timeout time.Duration, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		service:  service,
		metrics:  m,
		timeout:  timeout,
		log:      log,
	}
}

// POST /checkout/webhook
//
// The body is read raw and verified against the signature header before any
// parsing. Once verified, every recognized-or-ignored event is acknowledged
// 200 regardless of processing outcome; only signature problems produce an
// error status.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
	if err != nil {
		h.metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		respondError(w, h.log, http.StatusBadRequest, "invalid_body", "could not read request body")
		return
	}

	if err := h.verifier.Verify(payload, r.Header.Get(gateway.SignatureHeader)); err != nil {
		if errors.Is(err, gateway.ErrNoSigningSecret) {
			// Misconfiguration on our side: a 5xx keeps the gateway
			// retrying while an operator fixes the secret.
			h.log.Error("webhook signing secret not configured, rejecting event")
			h.metrics.WebhookEvents.WithLabelValues("unverifiable").Inc()
			respondError(w, h.log, http.StatusInternalServerError, "verification_unavailable",
				"webhook verification unavailable")
			return
		}
		h.log.WithError(err).Warn("webhook signature verification failed")
		h.metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		respondError(w, h.log, http.StatusBadRequest, "invalid_signature", "signature verification failed")
		return
	}

	event, err := fulfillment.ParseEvent(payload)
	if err != nil {
		// Authenticated but unparseable; ack so the gateway stops
		// redelivering a payload that will never parse.
		h.log.WithError(err).Error("failed to parse verified event")
		h.metrics.WebhookEvents.WithLabelValues("unparseable").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	result := h.service.HandleEvent(ctx, event)
	h.log.WithFields(logrus.Fields{
		"event_id": event.ID,
		"type":     event.Type,
		"outcome":  result.Outcome,
	}).Debug("webhook processed")

	w.WriteHeader(http.StatusOK)
}
