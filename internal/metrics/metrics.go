// Package metrics exposes prometheus instrumentation for the polling
// fleet and serves it over HTTP.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seedwatch_refresh_total",
			Help: "Total refresh invocations by site and outcome",
		},
		[]string{"site", "status"},
	)

	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seedwatch_refresh_duration_seconds",
			Help:    "Duration of refresh invocations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"site"},
	)

	SearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seedwatch_search_total",
			Help: "Total search invocations by site and outcome",
		},
		[]string{"site", "status"},
	)

	DocumentCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seedwatch_document_cache_hits_total",
			Help: "Document fetches served from the raw-page cache",
		},
	)

	DocumentCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seedwatch_document_cache_misses_total",
			Help: "Document fetches that went to the network",
		},
	)

	FetchBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seedwatch_fetch_bytes_total",
			Help: "Total bytes downloaded per remote host",
		},
		[]string{"host"},
	)
)

// RecordRefresh updates the refresh series for one invocation.
func RecordRefresh(site string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RefreshTotal.WithLabelValues(site, status).Inc()
	RefreshDuration.WithLabelValues(site).Observe(duration.Seconds())
}

// RecordSearch updates the search series for one invocation.
func RecordSearch(site string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SearchTotal.WithLabelValues(site, status).Inc()
}

// Server encapsulates the HTTP server exposing /metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the given port.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
