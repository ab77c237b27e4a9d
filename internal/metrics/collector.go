// Package metrics exposes the Prometheus metrics emitted by the scan
// orchestrator, hasher, and thumbnail cache (spec.md §4.5-§4.7). It
// generalizes the collector shape used elsewhere in this codebase to the
// file-indexing domain.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records scan, hash, thumbnail, and search metrics.
type Collector struct {
	scanDurationHistogram prometheus.HistogramVec
	scanAttemptsTotal     prometheus.CounterVec
	scanFailuresTotal     prometheus.CounterVec
	scanQueueDepthGauge   prometheus.Gauge
	scansInProgressGauge  prometheus.Gauge
	scanEntriesHistogram  prometheus.HistogramVec

	hasherFilesHashedTotal   prometheus.Counter
	hasherBytesHashedTotal   prometheus.Counter
	hasherBacklogGauge       prometheus.Gauge
	hasherDurationHistogram  prometheus.Histogram

	thumbnailRendersTotal   prometheus.CounterVec
	thumbnailEvictionsTotal prometheus.Counter
	thumbnailCacheBytes     prometheus.Gauge
	thumbnailCacheEntries   prometheus.Gauge

	searchQueriesTotal     prometheus.Counter
	searchDurationHistogram prometheus.Histogram

	storeConnectionStatus prometheus.Gauge
}

// New creates a Collector registered under namespace/subsystem with the
// given const labels (e.g. a hostname or install ID).
func New(namespace, subsystem string, labels prometheus.Labels) *Collector {
	return &Collector{
		scanDurationHistogram: *promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "scan_duration_seconds",
			Help:        "Duration of a volume scan in seconds",
			Buckets:     []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1200},
			ConstLabels: labels,
		}, []string{"mode"}),

		scanAttemptsTotal: *promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "scan_attempts_total",
			Help: "Total scan attempts by mode", ConstLabels: labels,
		}, []string{"mode"}),

		scanFailuresTotal: *promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "scan_failures_total",
			Help: "Total failed scans by mode and recoverability", ConstLabels: labels,
		}, []string{"mode", "recoverable"}),

		scanQueueDepthGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "scan_in_flight_count",
			Help: "Number of volumes currently being scanned", ConstLabels: labels,
		}),

		scansInProgressGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "scans_in_progress",
			Help: "Alias of scan_in_flight_count kept for dashboard compatibility", ConstLabels: labels,
		}),

		scanEntriesHistogram: *promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "scan_entries_processed",
			Help:        "Entries processed per scan",
			Buckets:     []float64{10, 100, 1000, 10000, 100000, 1000000},
			ConstLabels: labels,
		}, []string{"mode"}),

		hasherFilesHashedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "hasher_files_hashed_total",
			Help: "Total files fingerprinted by the hasher", ConstLabels: labels,
		}),

		hasherBytesHashedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "hasher_bytes_hashed_total",
			Help: "Total bytes read by the hasher's chunk sampling", ConstLabels: labels,
		}),

		hasherBacklogGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "hasher_backlog",
			Help: "Files still missing a fingerprint above the size threshold", ConstLabels: labels,
		}),

		hasherDurationHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "hasher_run_duration_seconds",
			Help:        "Duration of one hasher drain-to-empty run",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),

		thumbnailRendersTotal: *promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "thumbnail_renders_total",
			Help: "Total thumbnail render attempts by outcome", ConstLabels: labels,
		}, []string{"outcome"}),

		thumbnailEvictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "thumbnail_evictions_total",
			Help: "Total thumbnails evicted to stay within the byte budget", ConstLabels: labels,
		}),

		thumbnailCacheBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "thumbnail_cache_bytes",
			Help: "Current on-disk thumbnail cache size", ConstLabels: labels,
		}),

		thumbnailCacheEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "thumbnail_cache_entries",
			Help: "Current thumbnail row count", ConstLabels: labels,
		}),

		searchQueriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "search_queries_total",
			Help: "Total search queries served", ConstLabels: labels,
		}),

		searchDurationHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "search_duration_seconds",
			Help:        "Duration of a search query",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			ConstLabels: labels,
		}),

		storeConnectionStatus: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "store_connection_status",
			Help: "Index store connectivity (1=connected, 0=disconnected)", ConstLabels: labels,
		}),
	}
}

// ScanStarted marks a scan as in flight.
func (c *Collector) ScanStarted(mode string) {
	c.scanAttemptsTotal.WithLabelValues(mode).Inc()
	c.scanQueueDepthGauge.Inc()
	c.scansInProgressGauge.Inc()
}

// ScanFinished records a scan's terminal outcome.
func (c *Collector) ScanFinished(mode string, duration time.Duration, entries int64, err error, recoverable bool) {
	c.scanQueueDepthGauge.Dec()
	c.scansInProgressGauge.Dec()
	c.scanDurationHistogram.WithLabelValues(mode).Observe(duration.Seconds())
	c.scanEntriesHistogram.WithLabelValues(mode).Observe(float64(entries))
	if err != nil {
		recoverableLabel := "false"
		if recoverable {
			recoverableLabel = "true"
		}
		c.scanFailuresTotal.WithLabelValues(mode, recoverableLabel).Inc()
	}
}

// HasherRunCompleted records one hasher drain-to-empty pass.
func (c *Collector) HasherRunCompleted(duration time.Duration, filesHashed int, bytesRead int64, backlog int) {
	c.hasherDurationHistogram.Observe(duration.Seconds())
	c.hasherFilesHashedTotal.Add(float64(filesHashed))
	c.hasherBytesHashedTotal.Add(float64(bytesRead))
	c.hasherBacklogGauge.Set(float64(backlog))
}

// ThumbnailRendered records one render attempt's outcome ("hit", "rendered",
// "failed").
func (c *Collector) ThumbnailRendered(outcome string) {
	c.thumbnailRendersTotal.WithLabelValues(outcome).Inc()
}

// ThumbnailEvicted records one eviction batch.
func (c *Collector) ThumbnailEvicted(count int) {
	c.thumbnailEvictionsTotal.Add(float64(count))
}

// SetThumbnailCacheSize updates the current cache footprint gauges.
func (c *Collector) SetThumbnailCacheSize(bytes int64, entries int) {
	c.thumbnailCacheBytes.Set(float64(bytes))
	c.thumbnailCacheEntries.Set(float64(entries))
}

// SearchCompleted records one search request.
func (c *Collector) SearchCompleted(duration time.Duration) {
	c.searchQueriesTotal.Inc()
	c.searchDurationHistogram.Observe(duration.Seconds())
}

// SetStoreConnectionStatus updates index-store connectivity.
func (c *Collector) SetStoreConnectionStatus(connected bool) {
	if connected {
		c.storeConnectionStatus.Set(1)
	} else {
		c.storeConnectionStatus.Set(0)
	}
}
