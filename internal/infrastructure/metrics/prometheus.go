package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
// All recording methods are no-ops on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	bookings      *prometheus.CounterVec
	messages      prometheus.Counter
	emails        *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bookings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "booking_attempts_total",
			Help:      "Booking create attempts by kind and outcome",
		}, []string{"kind", "outcome"}),
		messages: f.NewCounter(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "chat_messages_total",
			Help:      "Chat messages persisted",
		}),
		emails: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "emails_total",
			Help:      "Email send attempts by template and result",
		}, []string{"template", "result"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "realtime_notifications_total",
			Help:      "Realtime pushes by event and delivery",
		}, []string{"event", "delivered"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// BookingAttempt records a create attempt. kind is "standard" or "demo";
// outcome is "created", "conflict" or "error".
func (m *Metrics) BookingAttempt(kind, outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messages.Inc()
}

func (m *Metrics) EmailResult(template string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.emails.WithLabelValues(template, result).Inc()
}

func (m *Metrics) Notification(event string, delivered bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, strconv.FormatBool(delivered)).Inc()
}
