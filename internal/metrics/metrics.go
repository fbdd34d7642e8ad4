package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Requests         *prometheus.CounterVec
	LatencyMS        *prometheus.HistogramVec
	CheckoutSessions *prometheus.CounterVec
	WebhookEvents    *prometheus.CounterVec
	InventoryLines   *prometheus.CounterVec
}

// New registers the storefront metrics on reg. Tests pass a fresh
// prometheus.NewRegistry; main passes the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		CheckoutSessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkout_sessions_total",
			Help:      "Checkout session creation outcomes.",
		}, []string{"outcome"}),
		WebhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "webhook_events_total",
			Help:      "Webhook event processing outcomes.",
		}, []string{"outcome"}),
		InventoryLines: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "inventory_lines_total",
			Help:      "Per-line inventory decrement results.",
		}, []string{"result"}),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
