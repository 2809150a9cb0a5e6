package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"sif-shopify-layer/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.PlacementCompleted(domain.FeatureOverlay, "enable", "ok")
	c.PlacementCompleted(domain.FeatureOverlay, "enable", "ok")
	c.AssetWritten("put", nil)
	c.AssetWritten("put", errors.New("boom"))
	c.ScriptTagChanged("create", nil)
	c.RateLimited("/api/shopify/script-tag")
	c.ConfigLookup(true)
	c.ConfigLookup(false)
	c.ConfigLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.placements.WithLabelValues("overlay", "enable", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.assetWrites.WithLabelValues("put", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.assetWrites.WithLabelValues("put", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.scriptTagChanges.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rateLimited.WithLabelValues("/api/shopify/script-tag")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.configLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.configLookups.WithLabelValues("miss")))
}

func TestCollector_MiddlewareAndHandler(t *testing.T) {
	c := NewCollector()
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", c.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(c.httpDuration))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sif_http_request_duration_seconds_count{method="GET",route="/things/{id}",status="418"} 1`)
}
