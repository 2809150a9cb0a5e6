// Package metrics exposes the app's operational counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sif"

// Collector implements ports.Metrics on a private registry
type Collector struct {
	registry *prometheus.Registry

	placements       *prometheus.CounterVec
	assetWrites      *prometheus.CounterVec
	scriptTagChanges *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
	configLookups    *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

var _ ports.Metrics = (*Collector)(nil)

// NewCollector creates the collectors and registers them with Go runtime metrics
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placements_total",
			Help:      "Placement operations by feature, operation and status.",
		}, []string{"feature", "operation", "status"}),
		assetWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_asset_writes_total",
			Help:      "Theme asset writes and deletes by outcome.",
		}, []string{"operation", "result"}),
		scriptTagChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "script_tag_changes_total",
			Help:      "Script tag creates and deletes by outcome.",
		}, []string{"operation", "result"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-store rate limiter.",
		}, []string{"route"}),
		configLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_lookups_total",
			Help:      "Storefront config resolutions by cache outcome.",
		}, []string{"cache"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	c.registry.MustRegister(
		c.placements,
		c.assetWrites,
		c.scriptTagChanges,
		c.rateLimited,
		c.configLookups,
		c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) PlacementCompleted(feature domain.Feature, operation, status string) {
	c.placements.WithLabelValues(string(feature), operation, status).Inc()
}

func (c *Collector) AssetWritten(operation string, err error) {
	c.assetWrites.WithLabelValues(operation, result(err)).Inc()
}

func (c *Collector) ScriptTagChanged(operation string, err error) {
	c.scriptTagChanges.WithLabelValues(operation, result(err)).Inc()
}

func (c *Collector) RateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

func (c *Collector) ConfigLookup(cacheHit bool) {
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	c.configLookups.WithLabelValues(label).Inc()
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Middleware observes request latency labelled with the chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.httpDuration.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
