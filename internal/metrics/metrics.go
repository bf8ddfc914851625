// Package metrics exposes Prometheus counters for perft runs.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PerftNodes counts leaf nodes visited by perft, per run kind ("perft", "divide").
	PerftNodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chesscore_perft_nodes_total",
		Help: "Leaf nodes counted by perft runs",
	}, []string{"kind"})

	// PerftDuration observes the wall time of perft runs that were computed
	// rather than served from the result store.
	PerftDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chesscore_perft_duration_seconds",
		Help:    "Wall time of perft runs",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	// CacheLookups counts perft store lookups by result ("hit", "miss", "error").
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chesscore_perft_cache_lookups_total",
		Help: "Perft result store lookups by result",
	}, []string{"result"})
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
