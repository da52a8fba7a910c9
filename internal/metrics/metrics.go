// package metrics registers the Prometheus collectors observed by the API
// connection, the response cache and the background tasks.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcx_api_requests_total",
			Help: "Total number of Media API calls",
		},
		[]string{"command", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bcx_api_request_duration_seconds",
			Help:    "Media API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	APIRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bcx_api_requests_in_flight",
			Help: "Number of Media API calls currently in progress",
		},
	)
)

// Response cache metrics
var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcx_response_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcx_db_queries_total",
			Help: "Total number of playlist cache queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bcx_db_query_duration_seconds",
			Help:    "Playlist cache query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Task metrics
var (
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcx_exports_total",
			Help: "Playlists processed by bulk export",
		},
		[]string{"format", "status"},
	)

	SyncedPlaylistsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bcx_synced_playlists_total",
			Help: "Playlists written to the local cache by sync",
		},
	)
)

// ObserveAPIRequest records one API call. status is the HTTP status or 0 when no response arrived.
func ObserveAPIRequest(command string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	APIRequestsTotal.WithLabelValues(command, label).Inc()
	APIRequestDuration.WithLabelValues(command).Observe(d.Seconds())
}

// ObserveCacheLookup records a response cache hit or miss.
func ObserveCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}

// ObserveDBQuery records one cache query started at start.
func ObserveDBQuery(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DBQueryTotal.WithLabelValues(operation, status).Inc()
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
