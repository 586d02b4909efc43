// Package telemetry exposes Prometheus metrics for the discovery service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Strategy labels for recommendations_total.
const (
	StrategyPeer             = "peer"
	StrategyGlobalFallback   = "global_popularity"
	StrategyCategoryFallback = "category_popularity"
)

// Metrics holds all book-discovery Prometheus metrics.
type Metrics struct {
	// RecommendationsTotal counts recommendation requests by the strategy
	// that produced the result.
	RecommendationsTotal *prometheus.CounterVec
	// RecommendationDuration tracks end-to-end recommendation latency.
	RecommendationDuration prometheus.Histogram
	// ProfilesTotal counts reading-profile requests.
	ProfilesTotal prometheus.Counter
	// LoansDropped counts borrow events rejected because the buffer was full.
	LoansDropped prometheus.Counter
}

// NewMetrics registers and returns the service metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RecommendationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "book_discovery_recommendations_total",
			Help: "Total recommendation requests served, by strategy",
		}, []string{"strategy"}),

		RecommendationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "book_discovery_recommendation_duration_seconds",
			Help:    "Time to produce a recommendation list",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),

		ProfilesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "book_discovery_profiles_total",
			Help: "Total reading profile requests served",
		}),

		LoansDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "book_discovery_loans_dropped_total",
			Help: "Borrow events dropped because the loan buffer was full",
		}),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
