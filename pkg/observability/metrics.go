// Package observability holds the Prometheus collectors for the API.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoutesBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heritage_routes_built_total",
		Help: "Number of routes successfully constructed and persisted.",
	})

	RoutesNotFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heritage_routes_empty_total",
		Help: "Number of route requests that found no candidates within the search radius.",
	})

	RouteBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "heritage_route_build_duration_seconds",
		Help:    "End-to-end duration of route construction including persistence.",
		Buckets: prometheus.DefBuckets,
	})

	NarrativeCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heritage_narrative_cache_hits_total",
		Help: "Narrative cache hits by tier.",
	}, []string{"tier"})

	NarrativeCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heritage_narrative_cache_misses_total",
		Help: "Narrative requests that required generation.",
	})

	NarrativeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heritage_narrative_fallbacks_total",
		Help: "Narrative generations served by the deterministic fallback composer.",
	})

	NarrativeGenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "heritage_narrative_generation_duration_seconds",
		Help:    "Duration of external narrative generation calls.",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 25, 30},
	})
)

// MetricsHandler exposes the default registry for scraping.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
