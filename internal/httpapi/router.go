package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Abuxar/alif-luxury/internal/metrics"
)

// NewRouter wires the core HTTP surface. The webhook route deliberately
// skips the compression and timeout middleware: the gateway sends small
// payloads and expects the raw body untouched.
func NewRouter(checkoutHandler *CheckoutHandler, webhookHandler *WebhookHandler, m *metrics.Metrics, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/checkout", func(r chi.Router) {
		r.With(MetricsMiddleware(m, "create_session")).
			Post("/create-session", checkoutHandler.CreateSession)
		r.With(MetricsMiddleware(m, "webhook")).
			Post("/webhook", webhookHandler.HandleWebhook)
	})

	return r
}
