package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "amexan"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// OrderMetrics counts order outcomes and background job results.
type OrderMetrics struct {
	Placed          prometheus.Counter
	Cancelled       prometheus.Counter
	Failures        *prometheus.CounterVec
	Revenue         prometheus.Counter
	PromoSweeps     prometheus.Counter
	PromoDeactivate prometheus.Counter
	OutboxPublished *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	m := &OrderMetrics{
		Placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders placed successfully.",
		}),
		Cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled and refunded.",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_failures_total",
			Help:      "Rejected or failed order operations by reason.",
		}, []string{"op", "reason"}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_debited_total",
			Help:      "Sum of order totals debited from wallets.",
		}),
		PromoSweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_sweeps_total",
			Help:      "Runs of the expired promo code sweep.",
		}),
		PromoDeactivate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_codes_deactivated_total",
			Help:      "Promo codes deactivated by the sweep.",
		}),
		OutboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox events handled by the relay, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.Placed, m.Cancelled, m.Failures, m.Revenue, m.PromoSweeps, m.PromoDeactivate, m.OutboxPublished)
	return m
}

func (m *OrderMetrics) OrderPlaced(total decimal.Decimal) {
	m.Placed.Inc()
	m.Revenue.Add(total.InexactFloat64())
}

func (m *OrderMetrics) OrderCancelled(decimal.Decimal) {
	m.Cancelled.Inc()
}

func (m *OrderMetrics) OrderFailed(op, code string) {
	m.Failures.WithLabelValues(op, strings.ToLower(code)).Inc()
}

func (m *OrderMetrics) PromoSwept(deactivated int64) {
	m.PromoSweeps.Inc()
	m.PromoDeactivate.Add(float64(deactivated))
}

func (m *OrderMetrics) OutboxSent(n int) {
	m.OutboxPublished.WithLabelValues("sent").Add(float64(n))
}

func (m *OrderMetrics) OutboxFailed() {
	m.OutboxPublished.WithLabelValues("failed").Inc()
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
