package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Instrument(mux)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /api/jobs/{id}", "418"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/123", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /api/jobs/{id}", "418"))
	assert.Equal(t, before+1, after)
	assert.Zero(t, testutil.ToFloat64(httpInFlight))
}

func TestGenerationCounters(t *testing.T) {
	before := testutil.ToFloat64(generationCalls.WithLabelValues("SKILLS", OutcomeFailed))
	GenerationCall("SKILLS", OutcomeFailed)
	assert.Equal(t, before+1, testutil.ToFloat64(generationCalls.WithLabelValues("SKILLS", OutcomeFailed)))

	NormalizationFallback("ALTERNATIVES")
	assert.GreaterOrEqual(t, testutil.ToFloat64(normalizationFallbacks.WithLabelValues("ALTERNATIVES")), 1.0)
}

func TestStatusWriterDefaultsToOK(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := NewStatusWriter(rr)
	_, _ = sw.Write([]byte("hi"))
	sw.Flush()
	assert.Equal(t, http.StatusOK, sw.Code)
	assert.True(t, rr.Flushed)
}
