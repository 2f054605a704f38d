// Package metrics provides Prometheus metrics for the publisher.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the publisher.
type Metrics struct {
	// Remote call metrics
	RemoteCalls        *prometheus.CounterVec
	RemoteCallDuration *prometheus.HistogramVec

	// Pipeline metrics
	StepFailures   *prometheus.CounterVec
	RunsCompleted  *prometheus.CounterVec
	UploadDuration prometheus.Histogram
	UploadBytes    prometheus.Histogram

	// Metadata sync metrics
	LanguagesSynced   prometheus.Counter
	ListingsPatched   prometheus.Counter
	ChangelogsPatched prometheus.Counter
	ImagesUploaded    prometheus.Counter
	MetadataSkipped   *prometheus.CounterVec
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Address string // Address for the scrape endpoint (e.g., ":9090")
}

var defaultMetrics *Metrics

// Init initializes the metrics package with global metrics.
// Call this once at startup.
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "stagehand"
	}

	m := &Metrics{
		RemoteCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_calls_total",
				Help:      "Total number of edit store calls",
			},
			[]string{"operation", "outcome"},
		),
		RemoteCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "Duration of edit store calls",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~200s
			},
			[]string{"operation"},
		),
		StepFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_failures_total",
				Help:      "Total number of fatal pipeline step failures",
			},
			[]string{"step"},
		),
		RunsCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of finished publish runs",
			},
			[]string{"outcome"},
		),
		UploadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "artifact_upload_duration_seconds",
				Help:      "Time to upload one artifact",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~400s
			},
		),
		UploadBytes: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "artifact_upload_bytes",
				Help:      "Size of uploaded artifacts in bytes",
				Buckets:   prometheus.ExponentialBuckets(1<<20, 2, 10), // 1MB to ~1GB
			},
		),
		LanguagesSynced: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "languages_synced_total",
				Help:      "Total number of language directories synchronized",
			},
		),
		ListingsPatched: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "listings_patched_total",
				Help:      "Total number of listing patches sent",
			},
		),
		ChangelogsPatched: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "changelogs_patched_total",
				Help:      "Total number of changelog patches sent",
			},
		),
		ImagesUploaded: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "images_uploaded_total",
				Help:      "Total number of listing images uploaded",
			},
		),
		MetadataSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "metadata_items_skipped_total",
				Help:      "Total number of unreadable metadata items skipped",
			},
			[]string{"kind"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics instance.
// Returns nil if Init has not been called.
func Get() *Metrics {
	return defaultMetrics
}

// ObserveRemoteCall records one edit store call.
func (m *Metrics) ObserveRemoteCall(operation, outcome string, seconds float64) {
	m.RemoteCalls.WithLabelValues(operation, outcome).Inc()
	m.RemoteCallDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveUpload records one artifact upload.
func (m *Metrics) ObserveUpload(seconds float64, bytes int64) {
	m.UploadDuration.Observe(seconds)
	m.UploadBytes.Observe(float64(bytes))
}

// IncStepFailure records a fatal pipeline step failure.
func (m *Metrics) IncStepFailure(step string) {
	m.StepFailures.WithLabelValues(step).Inc()
}

// IncRunCompleted records the outcome of a whole run ("ok" or "failed").
func (m *Metrics) IncRunCompleted(outcome string) {
	m.RunsCompleted.WithLabelValues(outcome).Inc()
}

// IncMetadataSkipped records one skipped metadata item.
// kind is "changelog" or "image".
func (m *Metrics) IncMetadataSkipped(kind string) {
	m.MetadataSkipped.WithLabelValues(kind).Inc()
}

// StartServer starts an HTTP server for Prometheus metrics scraping.
// Blocks until the server exits.
func StartServer(address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return http.ListenAndServe(address, mux)
}
