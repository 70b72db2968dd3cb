// Package metrics exports dashboard client metrics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Hierarchy load outcomes used as the "result" label.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultStale = "stale"
)

// PrometheusExporter serves merchant API and hierarchy metrics over HTTP.
// It is both the client's RequestObserver and the loader's LoadObserver,
// and is safe for concurrent use.
type PrometheusExporter struct {
	mu sync.RWMutex

	config   PrometheusExporterConfig
	registry *prometheus.Registry

	requestsTotal          *prometheus.CounterVec
	requestDurationSeconds *prometheus.HistogramVec
	loadDurationSeconds    *prometheus.HistogramVec
	degradedBranchesTotal  *prometheus.CounterVec
	hierarchyNodes         *prometheus.GaugeVec
	lastLoadTimestamp      prometheus.Gauge

	server *http.Server
	ln     net.Listener

	running   bool
	lastError error
}

// PrometheusExporterConfig configures the exporter. Zero Path and
// HistogramBuckets fall back to /metrics and prometheus.DefBuckets.
type PrometheusExporterConfig struct {
	Port             int    // 0 picks a free port
	Path             string // scrape path
	Namespace        string // metric name prefix, e.g. "dashboard"
	HistogramBuckets []float64
}

// DefaultPrometheusExporterConfig mirrors the config package defaults.
func DefaultPrometheusExporterConfig() PrometheusExporterConfig {
	return PrometheusExporterConfig{
		Port:             9090,
		Path:             "/metrics",
		Namespace:        "dashboard",
		HistogramBuckets: prometheus.DefBuckets,
	}
}

// NewPrometheusExporter registers the dashboard metrics on a private registry.
func NewPrometheusExporter(config PrometheusExporterConfig) *PrometheusExporter {
	if config.Path == "" {
		config.Path = "/metrics"
	}
	if len(config.HistogramBuckets) == 0 {
		config.HistogramBuckets = prometheus.DefBuckets
	}

	e := &PrometheusExporter{config: config, registry: prometheus.NewRegistry()}
	e.initMetrics()
	return e
}

func (e *PrometheusExporter) initMetrics() {
	e.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: e.config.Namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of merchant API requests.",
		},
		[]string{"method", "route", "status"},
	)

	e.requestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: e.config.Namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of merchant API requests in seconds.",
			Buckets:   e.config.HistogramBuckets,
		},
		[]string{"method", "route"},
	)

	e.loadDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: e.config.Namespace,
			Subsystem: "hierarchy",
			Name:      "load_duration_seconds",
			Help:      "Duration of full category hierarchy loads in seconds.",
			Buckets:   e.config.HistogramBuckets,
		},
		[]string{"result"},
	)

	e.degradedBranchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: e.config.Namespace,
			Subsystem: "hierarchy",
			Name:      "degraded_branches_total",
			Help:      "Child fetches that failed and were replaced by an empty branch.",
		},
		[]string{"level"},
	)

	e.hierarchyNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: e.config.Namespace,
			Subsystem: "hierarchy",
			Name:      "nodes",
			Help:      "Number of nodes per level in the last committed hierarchy.",
		},
		[]string{"level"},
	)

	e.lastLoadTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: e.config.Namespace,
			Subsystem: "hierarchy",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful hierarchy load.",
		},
	)

	e.registry.MustRegister(
		e.requestsTotal,
		e.requestDurationSeconds,
		e.loadDurationSeconds,
		e.degradedBranchesTotal,
		e.hierarchyNodes,
		e.lastLoadTimestamp,
	)
}

// Start listens on the configured port and serves the scrape path and /health.
// Calling Start on a running exporter is a no-op.
func (e *PrometheusExporter) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", e.config.Port))
	if err != nil {
		return fmt.Errorf("starting Prometheus exporter: %w", err)
	}
	e.ln = ln

	mux := http.NewServeMux()
	mux.Handle(e.config.Path, promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	e.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.mu.Lock()
			e.lastError = err
			e.mu.Unlock()
		}
	}()

	e.running = true
	return nil
}

// Stop shuts the endpoint down gracefully.
func (e *PrometheusExporter) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	e.running = false

	if e.server != nil {
		return e.server.Shutdown(ctx)
	}
	return nil
}

// ObserveRequest records one merchant API exchange. status 0 means no
// response was received.
func (e *PrometheusExporter) ObserveRequest(method, route string, status int, duration time.Duration, _ error) {
	statusLabel := strconv.Itoa(status)
	if status == 0 {
		statusLabel = "error"
	}
	e.requestsTotal.WithLabelValues(method, route, statusLabel).Inc()
	e.requestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveHierarchyLoad records a finished hierarchy load. The node counts
// are only applied for successful loads.
func (e *PrometheusExporter) ObserveHierarchyLoad(duration time.Duration, result string, categories, subCategories, subSubCategories int) {
	e.loadDurationSeconds.WithLabelValues(result).Observe(duration.Seconds())
	if result != ResultOK {
		return
	}
	e.hierarchyNodes.WithLabelValues("category").Set(float64(categories))
	e.hierarchyNodes.WithLabelValues("subcategory").Set(float64(subCategories))
	e.hierarchyNodes.WithLabelValues("subsubcategory").Set(float64(subSubCategories))
	e.lastLoadTimestamp.SetToCurrentTime()
}

// ObserveDegradedBranch counts a child fetch replaced by an empty branch.
func (e *PrometheusExporter) ObserveDegradedBranch(level string) {
	e.degradedBranchesTotal.WithLabelValues(level).Inc()
}

// Address returns the URL of the metrics endpoint.
func (e *PrometheusExporter) Address() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	port := e.config.Port
	if e.ln != nil {
		if addr, ok := e.ln.Addr().(*net.TCPAddr); ok {
			port = addr.Port
		}
	}
	return fmt.Sprintf("http://localhost:%d%s", port, e.config.Path)
}

// IsRunning reports whether Start succeeded and Stop has not been called.
func (e *PrometheusExporter) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// LastError is the serve error that ended the endpoint, if any.
func (e *PrometheusExporter) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastError
}

// Gather returns the current metric families; tests use it instead of scraping.
func (e *PrometheusExporter) Gather() ([]*dto.MetricFamily, error) {
	return e.registry.Gather()
}
