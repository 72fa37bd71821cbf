package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Metrics holds all Prometheus metrics of a backtest run.
type Metrics struct {
	Registry *prometheus.Registry

	BarsTotal      *prometheus.CounterVec // labels: symbol
	DecisionsTotal *prometheus.CounterVec // labels: symbol, kind
	FaultsTotal    *prometheus.CounterVec // labels: symbol
	SymbolsFailed  prometheus.Counter
	ReplayDur      prometheus.Histogram
}

// NewMetrics creates the metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		BarsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "replaylab_bars_total",
			Help: "Bars replayed",
		}, []string{"symbol"}),
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "replaylab_decisions_total",
			Help: "Accepted decisions (by kind)",
		}, []string{"symbol", "kind"}),
		FaultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "replaylab_decision_faults_total",
			Help: "Bars whose decision path failed and degraded to no signal",
		}, []string{"symbol"}),
		SymbolsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replaylab_symbols_failed_total",
			Help: "Symbols that could not be loaded or replayed",
		}),
		ReplayDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "replaylab_replay_duration_seconds",
			Help:    "Wall time to replay one symbol",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	m.Registry.MustRegister(
		m.BarsTotal,
		m.DecisionsTotal,
		m.FaultsTotal,
		m.SymbolsFailed,
		m.ReplayDur,
	)
	return m
}

// Server runs an HTTP server exposing /metrics.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics server for m.
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		logger := log.WithFields(log.Fields{"component": "metrics", "addr": s.addr})
		logger.Info("server listening")
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server stopped")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
