// Package metrics instruments cmd/bbqbench with Prometheus counters and
// histograms.
//
// Grounded on go-arcade-arcade/pkg/metrics/metrics.go's registry +
// promhttp.Handler shape, trimmed down to what a queue throughput
// benchmark needs: this module has no go-metrics-sink adapter layer
// because nothing downstream of the benchmark speaks that abstraction
// (see DESIGN.md for that omission's justification).
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes the counters and histograms cmd/bbqbench scenarios
// update while they run.
type Recorder struct {
	registry *prometheus.Registry

	pushed    prometheus.Counter
	popped    prometheus.Counter
	pushFull  prometheus.Counter
	popEmpty  prometheus.Counter
	pushLat   prometheus.Histogram
	popLat    prometheus.Histogram
}

// NewRecorder creates a Recorder with a fresh registry and registers its
// collectors on it.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bbq_pushed_total",
			Help: "Number of values successfully pushed onto the queue.",
		}),
		popped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bbq_popped_total",
			Help: "Number of values successfully popped from the queue.",
		}),
		pushFull: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bbq_push_full_total",
			Help: "Number of Push calls that returned ErrFull.",
		}),
		popEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bbq_pop_empty_total",
			Help: "Number of Pop calls that found the queue empty.",
		}),
		pushLat: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bbq_push_latency_seconds",
			Help:    "Latency of successful Push calls.",
			Buckets: prometheus.ExponentialBuckets(1e-8, 4, 16),
		}),
		popLat: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bbq_pop_latency_seconds",
			Help:    "Latency of successful Pop calls.",
			Buckets: prometheus.ExponentialBuckets(1e-8, 4, 16),
		}),
	}

	registry.MustRegister(r.pushed, r.popped, r.pushFull, r.popEmpty, r.pushLat, r.popLat)
	return r
}

// ObservePush records the outcome and latency of one Push call.
func (r *Recorder) ObservePush(d time.Duration, ok bool) {
	if ok {
		r.pushed.Inc()
		r.pushLat.Observe(d.Seconds())
		return
	}
	r.pushFull.Inc()
}

// ObservePop records the outcome and latency of one Pop call.
func (r *Recorder) ObservePop(d time.Duration, ok bool) {
	if ok {
		r.popped.Inc()
		r.popLat.Observe(d.Seconds())
		return
	}
	r.popEmpty.Inc()
}

// Server serves the Recorder's registry over HTTP at /metrics.
type Server struct {
	addr   string
	server *http.Server
}

// NewServer builds (but does not start) a metrics HTTP server for r,
// listening on addr.
func NewServer(addr string, r *Recorder) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	return &Server{
		addr:   addr,
		server: &http.Server{Addr: addr, Handler: mux},
	}
}

// Start begins serving in the background. It waits up to 50ms and
// returns the error if ListenAndServe fails within that time (for
// example, when binding fails); otherwise it returns nil without
// confirming that the listener is bound.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
