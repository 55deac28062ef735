// Package metrics owns the Prometheus registry for the API.
package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ROAMMATE_BACK-END/internal/utils"
)

// Metrics encapsulates the collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	gateDecisions   *prometheus.CounterVec
	suggestions     *prometheus.CounterVec
	joinRequests    *prometheus.CounterVec
	chatMessages    prometheus.Counter
	chatClients     prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	gateDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "access_gate_decisions_total",
		Help: "Access gate outcomes by route kind",
	}, []string{"route_kind", "decision"})

	suggestions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_spark_suggestions_total",
		Help: "Suggestion generation attempts by result",
	}, []string{"result"})

	joinRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_join_requests_total",
		Help: "Join requests by result",
	}, []string{"result"})

	chatMessages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Chat messages posted",
	})

	chatClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_ws_clients",
		Help: "Connected chat websocket clients",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, gateDecisions, suggestions, joinRequests, chatMessages, chatClients, goroutines)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		gateDecisions:   gateDecisions,
		suggestions:     suggestions,
		joinRequests:    joinRequests,
		chatMessages:    chatMessages,
		chatClients:     chatClients,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	s := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, s).Observe(d.Seconds())
	m.requestTotal.WithLabelValues(method, route, s).Inc()
}

func (m *Metrics) RecordGateDecision(routeKind, decision string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(routeKind, decision).Inc()
}

func (m *Metrics) RecordSuggestion(result string) {
	if m == nil {
		return
	}
	m.suggestions.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordJoin(result string) {
	if m == nil {
		return
	}
	m.joinRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordChatMessage() {
	if m == nil {
		return
	}
	m.chatMessages.Inc()
}

// ChatClientDelta adjusts the connected websocket gauge.
func (m *Metrics) ChatClientDelta(n int) {
	if m == nil {
		return
	}
	m.chatClients.Add(float64(n))
}

// Middleware records request count and latency labelled by the matched
// ServeMux pattern, so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := utils.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTPRequest(r.Method, route, rec.Status, time.Since(start))
	})
}
