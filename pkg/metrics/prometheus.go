// Package metrics provides Prometheus metrics for the rally chart service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// defaultRenderBuckets covers sub-millisecond scene builds up to slow PNG rasterization.
var defaultRenderBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the rally service.
type Manager struct {
	namespace       string
	subsystem       string
	renderBuckets   []float64
	enabled         bool
	refreshInterval time.Duration
	constLabels     map[string]string
	registry        prometheus.Registerer

	// Rendering - what the charts actually cost
	renderPasses  *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec
	emptyRenders  *prometheus.CounterVec
	sceneNodes    *prometheus.GaugeVec
	commitLatency *prometheus.HistogramVec
	commitErrors  *prometheus.CounterVec

	// Sizing and interaction
	sizeObservations prometheus.Counter
	sizeEmissions    prometheus.Counter
	sizeFailures     prometheus.Counter
	tooltipEvents    *prometheus.CounterVec

	// Operational state
	mountedCharts prometheus.Gauge
	panels        prometheus.Gauge
	playersLoaded prometheus.Gauge
	tableRows     *prometheus.GaugeVec

	// Batch export
	exportQueueSize  prometheus.Gauge
	exportJobs       *prometheus.CounterVec
	exportJobLatency *prometheus.HistogramVec
	exportWorkers    prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "rally",
		subsystem:       "charts",
		renderBuckets:   defaultRenderBuckets,
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		constLabels:     make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval returns how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.renderPasses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "render_passes_total",
		Help:        "Total number of render passes by chart kind",
		ConstLabels: labels,
	}, []string{"chart"})

	m.renderLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "render_latency_milliseconds",
		Help:        "Time to build a scene graph in milliseconds",
		Buckets:     m.renderBuckets,
		ConstLabels: labels,
	}, []string{"chart"})

	m.emptyRenders = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "empty_renders_total",
		Help:        "Render passes that produced no geometry, by reason",
		ConstLabels: labels,
	}, []string{"chart", "reason"})

	m.sceneNodes = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scene_nodes",
		Help:        "Node count of the most recent scene per chart kind",
		ConstLabels: labels,
	}, []string{"chart"})

	m.commitLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "commit_latency_milliseconds",
		Help:        "Time to commit a scene to its output in milliseconds",
		Buckets:     m.renderBuckets,
		ConstLabels: labels,
	}, []string{"target"})

	m.commitErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "commit_errors_total",
		Help:        "Total number of failed commits by target",
		ConstLabels: labels,
	}, []string{"target"})

	m.sizeObservations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "size_observations_total",
		Help:        "Container measurements taken by size observers",
		ConstLabels: labels,
	})

	m.sizeEmissions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "size_emissions_total",
		Help:        "Distinct sizes emitted to subscribers",
		ConstLabels: labels,
	})

	m.sizeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "size_failures_total",
		Help:        "Container measurements that failed and were treated as zero size",
		ConstLabels: labels,
	})

	m.tooltipEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tooltip_events_total",
		Help:        "Tooltip transitions by chart kind and event",
		ConstLabels: labels,
	}, []string{"chart", "event"})

	m.mountedCharts = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "mounted_charts",
		Help:        "Charts currently mounted and subscribed to a size observer",
		ConstLabels: labels,
	})

	m.panels = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "panels",
		Help:        "Player panels currently open",
		ConstLabels: labels,
	})

	m.playersLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "players_loaded",
		Help:        "Players in the current dataset snapshot",
		ConstLabels: labels,
	})

	m.tableRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "table_rows",
		Help:        "Rows loaded per source table",
		ConstLabels: labels,
	}, []string{"table"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.renderBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_component_total",
			Help:        "Total number of errors by component",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_type_total",
			Help:        "Total number of errors by type",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "error_latency_milliseconds",
			Help:        "Latency of operations that resulted in errors",
			Buckets:     m.renderBuckets,
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.exportQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_queue_size",
		Help:        "Export jobs waiting for a worker",
		ConstLabels: labels,
	})

	m.exportJobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_jobs_total",
		Help:        "Export jobs by chart kind and outcome",
		ConstLabels: labels,
	}, []string{"chart", "status"})

	m.exportJobLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_job_latency_milliseconds",
		Help:        "Time to render and write one exported chart",
		Buckets:     m.renderBuckets,
		ConstLabels: labels,
	}, []string{"chart"})

	m.exportWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_workers_active",
		Help:        "Running export workers",
		ConstLabels: labels,
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordRender records one render pass for a chart kind.
func RecordRender(chart string, latencyMs float64, nodes int) {
	if !globalManager.enabled {
		return
	}
	globalManager.renderPasses.WithLabelValues(chart).Inc()
	globalManager.renderLatency.WithLabelValues(chart).Observe(latencyMs)
	globalManager.sceneNodes.WithLabelValues(chart).Set(float64(nodes))
}

// RecordEmptyRender records a pass that produced no geometry.
func RecordEmptyRender(chart, reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.emptyRenders.WithLabelValues(chart, reason).Inc()
}

// RecordCommit records a commit to target ("svg", "png", "term").
func RecordCommit(target string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.commitLatency.WithLabelValues(target).Observe(latencyMs)
}

// RecordCommitError records a failed commit.
func RecordCommitError(target string) {
	if !globalManager.enabled {
		return
	}
	globalManager.commitErrors.WithLabelValues(target).Inc()
	globalManager.errorRateByComponent.WithLabelValues("commit", target).Inc()
}

// RecordSizeObservation counts a container measurement.
func RecordSizeObservation() {
	if !globalManager.enabled {
		return
	}
	globalManager.sizeObservations.Inc()
}

// RecordSizeEmission counts a size delivered to subscribers.
func RecordSizeEmission() {
	if !globalManager.enabled {
		return
	}
	globalManager.sizeEmissions.Inc()
}

// RecordSizeFailure counts a failed measurement.
func RecordSizeFailure() {
	if !globalManager.enabled {
		return
	}
	globalManager.sizeFailures.Inc()
	globalManager.errorRateByComponent.WithLabelValues("resize", "measure_failed").Inc()
}

// RecordTooltipEvent counts a tooltip transition ("enter", "move", "leave").
func RecordTooltipEvent(chart, event string) {
	if !globalManager.enabled {
		return
	}
	globalManager.tooltipEvents.WithLabelValues(chart, event).Inc()
}

// AddMountedCharts adjusts the mounted chart gauge by delta.
func AddMountedCharts(delta int) {
	globalManager.mountedCharts.Add(float64(delta))
}

// UpdatePanels sets the open panel count.
func UpdatePanels(count int) {
	globalManager.panels.Set(float64(count))
}

// UpdatePlayersLoaded sets the roster size.
func UpdatePlayersLoaded(count int) {
	globalManager.playersLoaded.Set(float64(count))
}

// UpdateTableRows sets the loaded row count for a source table.
func UpdateTableRows(table string, rows int) {
	globalManager.tableRows.WithLabelValues(table).Set(float64(rows))
}

// UpdateExportQueueSize sets the number of queued export jobs.
func UpdateExportQueueSize(size int) {
	globalManager.exportQueueSize.Set(float64(size))
}

// RecordExportJob records a finished export job; status is "ok" or "failed".
func RecordExportJob(chart, status string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.exportJobs.WithLabelValues(chart, status).Inc()
	globalManager.exportJobLatency.WithLabelValues(chart).Observe(latencyMs)
}

// AddExportWorkers adjusts the running export worker gauge by delta.
func AddExportWorkers(delta int) {
	globalManager.exportWorkers.Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// Interval returns how often hosts should refresh the periodic gauges.
func Interval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
