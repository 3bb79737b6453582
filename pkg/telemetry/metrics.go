package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation status label values.
const (
	StatusOK            = "ok"
	StatusAlreadyExists = "already_exists"
	StatusNotFound      = "not_found"
	StatusError         = "error"
)

// Metrics provides Prometheus metrics for medstore.
type Metrics struct {
	config MetricsConfig

	// Store operation metrics
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	searchResults     *prometheus.HistogramVec

	// Import metrics
	recordsImported *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of medication store operations",
			},
			[]string{"operation", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of medication store operations in seconds",
				Buckets:   buckets,
			},
			[]string{"operation"},
		),
		searchResults: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_search_results",
				Help:      "Number of records returned by substring searches",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
			},
			[]string{"field"},
		),
		recordsImported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_imported_total",
				Help:      "Records processed by seed and import, by outcome",
			},
			[]string{"source", "outcome"},
		),
	}

	registry.MustRegister(
		m.operations,
		m.operationDuration,
		m.searchResults,
		m.recordsImported,
	)

	return m, nil
}

// RecordOperation records one store operation with its status and duration.
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	if m.operations == nil {
		return
	}
	m.operations.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSearchResults records how many records a search returned.
func (m *Metrics) RecordSearchResults(field string, count int) {
	if m.searchResults == nil {
		return
	}
	m.searchResults.WithLabelValues(field).Observe(float64(count))
}

// RecordImported records the outcome of loading one record from source
// ("seed" or "import"). Outcome is "inserted", "skipped" or "failed".
func (m *Metrics) RecordImported(source, outcome string) {
	if m.recordsImported == nil {
		return
	}
	m.recordsImported.WithLabelValues(source, outcome).Inc()
}

// Registry returns the underlying registry, or nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer serves metrics on the configured listen address until
// ctx is done. It returns immediately; with metrics disabled or no listen
// address it does nothing.
func (m *Metrics) StartMetricsServer(ctx context.Context, logger *Logger) error {
	if !m.config.Enabled || m.config.ListenAddress == "" {
		return nil
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// Log error but don't fail the application
			logger.WithError(err).Error("metrics server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.WithField("address", m.config.ListenAddress).Info("metrics server listening")

	return nil
}
