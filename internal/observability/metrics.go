// Package observability exposes prometheus metrics for quotes, tariff
// override saves, copy/share actions and HTTP traffic.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rental_quote"

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records
// nothing, so callers that do not export metrics can pass nil.
type Metrics struct {
	QuotesComputed *prometheus.CounterVec
	QuotesDeclined prometheus.Counter
	OverrideSaves  *prometheus.CounterVec
	ShareActions   *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPLatency    *prometheus.HistogramVec
}

// NewMetrics builds the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QuotesComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "quotes_computed_total", Help: "Quotes computed."},
			[]string{"season", "plan"},
		),
		QuotesDeclined: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "quotes_declined_total", Help: "Calculations declined for invalid input."},
		),
		OverrideSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "override_saves_total", Help: "Tariff override saves."},
			[]string{"result"},
		),
		ShareActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "share_actions_total", Help: "Copy and share actions."},
			[]string{"action", "result"}, // action: copy_value|copy_summary|share
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "http_request_duration_seconds",
				Help:    "HTTP request duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.QuotesComputed, m.QuotesDeclined, m.OverrideSaves, m.ShareActions, m.HTTPRequests, m.HTTPLatency)
	}
	return m
}

// NewRegistry returns a registry carrying the metrics plus the go and
// process collectors.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg, NewMetrics(reg)
}

// Handler serves the registry in the prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveQuote counts a computed quote by season and plan.
func (m *Metrics) ObserveQuote(season, plan string) {
	if m == nil {
		return
	}
	m.QuotesComputed.WithLabelValues(season, plan).Inc()
}

// ObserveDecline counts a calculation the calculator declined.
func (m *Metrics) ObserveDecline() {
	if m == nil {
		return
	}
	m.QuotesDeclined.Inc()
}

// ObserveOverrideSave counts an override save by result.
func (m *Metrics) ObserveOverrideSave(err error) {
	if m == nil {
		return
	}
	m.OverrideSaves.WithLabelValues(Result(err)).Inc()
}

// ObserveShare counts a copy or share action by result.
func (m *Metrics) ObserveShare(action string, err error) {
	if m == nil {
		return
	}
	m.ShareActions.WithLabelValues(action, Result(err)).Inc()
}

// ObserveHTTP records a served request and its latency.
func (m *Metrics) ObserveHTTP(route, method string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// Result maps an error to the result label.
func Result(err error) string {
	if err == nil {
		return ResultOK
	}
	return ResultError
}
