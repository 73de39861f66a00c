// Package obs holds the process-wide logging and Prometheus instrumentation.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeBadConfig = "config_not_found"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	generationCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_calls_total",
			Help: "Text-generation provider calls by task and outcome.",
		},
		[]string{"task", "outcome"},
	)

	normalizationFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalization_fallbacks_total",
			Help: "Responses replaced by a fallback result because their shape was unusable.",
		},
		[]string{"task"},
	)
)

// Init registers every collector with the default registry. Call it once.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, generationCalls, normalizationFallbacks)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// GenerationCall counts one provider call.
func GenerationCall(task, outcome string) {
	generationCalls.WithLabelValues(task, outcome).Inc()
}

// NormalizationFallback counts one fallback substitution.
func NormalizationFallback(task string) {
	normalizationFallbacks.WithLabelValues(task).Inc()
}

// Instrument records in-flight, count and latency per route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()
		start := time.Now()

		sw := NewStatusWriter(w)
		next.ServeHTTP(sw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(sw.Code)
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

// StatusWriter remembers the status code written through it.
type StatusWriter struct {
	http.ResponseWriter
	Code int
}

func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	return &StatusWriter{ResponseWriter: w, Code: http.StatusOK}
}

func (w *StatusWriter) WriteHeader(code int) {
	w.Code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers flush through the wrapper.
func (w *StatusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
