// Package metrics
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess      = "success"
	OutcomeTestMode     = "test_mode"
	OutcomeInvalidURL   = "invalid_url"
	OutcomeFetchFailed  = "fetch_failed"
	OutcomeHTTPStatus   = "http_status"
	OutcomePriceMissing = "price_not_found"
)

var (
	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricealert_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_name"},
	)
	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricealert_extractions_total",
			Help: "Total number of pipeline runs, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	PriceTierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricealert_price_tier_total",
			Help: "Number of prices found, labeled by the tier that produced them.",
		},
		[]string{"tier"},
	)
	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricealert_fetch_duration_seconds",
			Help:    "Duration of product page fetches in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
	)
	TrackerTargetHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricealert_tracker_target_hits_total",
			Help: "Number of tracker refreshes where the price reached the target.",
		},
	)
	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricealert_cache_requests_total",
			Help: "Result cache lookups, labeled by hit, miss or error.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(DBQueryDuration)
	prometheus.MustRegister(ExtractionsTotal)
	prometheus.MustRegister(PriceTierTotal)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(TrackerTargetHits)
	prometheus.MustRegister(CacheRequests)
}

func ExposeMetrics(addr string) {
	slog.Info("Exposing Prometheus metrics", "address", addr)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Failed to start Prometheus metrics server", "error", err)
	}
}
