// Package metrics exposes the Prometheus metrics of the app.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks template and result events, batch sends and HTTP requests.
type Metrics struct {
	TemplateEvents  *prometheus.CounterVec
	ResultEvents    *prometheus.CounterVec
	BatchItems      *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TemplateEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scoolynk_template_events_total",
			Help: "Total number of result template events, by event",
		}, []string{"event"}),
		ResultEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scoolynk_result_events_total",
			Help: "Total number of result lifecycle events, by event",
		}, []string{"event"}),
		BatchItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scoolynk_result_batch_items_total",
			Help: "Total number of results processed by batch sends, by outcome",
		}, []string{"status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoolynk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
	}
}

// TemplateEvent records a template event, e.g. "created" or "conflict".
func (m *Metrics) TemplateEvent(event string) {
	m.TemplateEvents.WithLabelValues(event).Inc()
}

// ResultEvent records a result event, e.g. "submit" or "send".
func (m *Metrics) ResultEvent(event string) {
	m.ResultEvents.WithLabelValues(event).Inc()
}

// BatchItem records the outcome of one item of a batch send.
func (m *Metrics) BatchItem(status string) {
	m.BatchItems.WithLabelValues(status).Inc()
}

// ObserveRequest records the duration of an HTTP request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
