// Package metrics holds the Prometheus instruments of the booking service. A nil
// *Metrics records nothing, so tests and tools can skip wiring it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	admissions    *prometheus.CounterVec
	overlapCount  prometheus.Histogram
	notifications *prometheus.CounterVec
	reminders     *prometheus.CounterVec
	published     prometheus.Counter
}

func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "route"}),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_admissions_total",
			Help:        "Admission decisions by operation and outcome",
			ConstLabels: labels,
		}, []string{"operation", "outcome"}),
		overlapCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "booking_overlap_count",
			Help:        "Overlapping appointments seen by admission checks",
			Buckets:     []float64{0, 1, 2, 3, 5, 8, 13},
			ConstLabels: labels,
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "whatsapp_messages_total",
			Help:        "WhatsApp messages by type and final status",
			ConstLabels: labels,
		}, []string{"type", "status"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reminder_runs_total",
			Help:        "Reminder job runs by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "outbox_published_total",
			Help:        "Outbox events published to Kafka",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration, m.admissions, m.overlapCount,
		m.notifications, m.reminders, m.published,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Admission records one capacity decision. outcome is "admitted" or "rejected".
func (m *Metrics) Admission(operation string, admitted bool, overlap int) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if admitted {
		outcome = "admitted"
	}
	m.admissions.WithLabelValues(operation, outcome).Inc()
	m.overlapCount.Observe(float64(overlap))
}

func (m *Metrics) Message(messageType, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(messageType, status).Inc()
}

func (m *Metrics) ReminderRun(outcome string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Published(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.published.Add(float64(n))
}
