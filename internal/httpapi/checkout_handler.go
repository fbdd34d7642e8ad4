package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Abuxar/alif-luxury/internal/checkout"
	"github.com/Abuxar/alif-luxury/internal/domain"
	"github.com/Abuxar/alif-luxury/internal/metrics"
)

const maxCheckoutBodySize = 1 << 20 // 1MB

type CheckoutHandler struct {
	service checkout.CheckoutService
	metrics *metrics.Metrics
	timeout time.Duration
	log     *logrus.Logger
}

func NewCheckoutHandler(service checkout.CheckoutService, m *metrics.Metrics, timeout time.Duration, log *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		metrics: m,
		timeout: timeout,
		log:     log,
	}
}

type createSessionRequestDTO struct {
	Items []domain.CheckoutLine `json:"items"`
	Email string                `json:"email"`
}

type createSessionResponseDTO struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// POST /checkout/create-session
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutBodySize)

	var req createSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.CheckoutSessions.WithLabelValues("rejected").Inc()
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, err := h.service.CreateSession(ctx, req.Items, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrInvalidLine):
			h.metrics.CheckoutSessions.WithLabelValues("rejected").Inc()
			respondError(w, h.log, http.StatusBadRequest, "invalid_cart", err.Error())
		default:
			// Gateway detail is logged inside the adapter; the customer
			// only ever sees a generic failure.
			h.metrics.CheckoutSessions.WithLabelValues("gateway_error").Inc()
			respondError(w, h.log, http.StatusInternalServerError, "checkout_failed",
				"checkout session creation failed")
		}
		return
	}

	h.metrics.CheckoutSessions.WithLabelValues("created").Inc()
	respondJSON(w, h.log, http.StatusOK, createSessionResponseDTO{
		ID:  session.ID,
		URL: session.URL,
	})
}
