package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByPattern(t *testing.T) {
	m := New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/trips/{tripId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	for _, id := range []string{"a", "b", "c"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/trips/"+id, nil))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "GET /api/trips/{tripId}", "404")))
}

func TestCounters(t *testing.T) {
	m := New()
	m.RecordGateDecision("main", "redirectToProfile")
	m.RecordSuggestion("ok")
	m.RecordJoin("full")
	m.RecordChatMessage()
	m.ChatClientDelta(2)
	m.ChatClientDelta(-1)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.gateDecisions.WithLabelValues("main", "redirectToProfile")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.chatClients))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), "trip_join_requests_total")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordGateDecision("main", "allow")
	m.ObserveHTTPRequest("GET", "/", 200, 0)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := m.Middleware(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
