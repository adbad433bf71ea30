package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tour-reservations/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/metrics"
)

func sampleCount(t *testing.T, labels ...string) uint64 {
	t.Helper()
	m, ok := metrics.HTTPRequestDuration.WithLabelValues(labels...).(prometheus.Metric)
	require.True(t, ok)
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	return out.GetHistogram().GetSampleCount()
}

func TestMetrics_ObservesRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(middlewarectx.Metrics)
	router.Get("/reservations/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := sampleCount(t, http.MethodGet, "/reservations/{id}", "418")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations/42", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, sampleCount(t, http.MethodGet, "/reservations/{id}", "418"))
}
