// Package metrics exposes Prometheus instrumentation for the asset
// explorer service under the asset_explorer_ namespace.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansStarted counts scans by how they began: full, cached or
	// refresh.
	ScansStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_explorer_scans_started_total",
		Help: "Number of scans started, by mode",
	}, []string{"mode"})

	// ScansCompleted counts finished scans by lifecycle outcome.
	ScansCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_explorer_scans_completed_total",
		Help: "Number of scans finished, by outcome",
	}, []string{"outcome"})

	// ScanDuration observes wall-clock scan time.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "asset_explorer_scan_duration_seconds",
		Help:    "Wall-clock duration of scans",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	// ContainersScanned counts scanned containers by kind.
	ContainersScanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_explorer_containers_scanned_total",
		Help: "Number of containers scanned, by container kind",
	}, []string{"kind"})

	// AssetsIndexed tracks the asset count of the most recent scan.
	AssetsIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asset_explorer_assets_indexed",
		Help: "Assets indexed by the most recently completed scan",
	})

	// CacheLookups counts snapshot cache hits and misses.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_explorer_cache_lookups_total",
		Help: "Snapshot cache lookups, by result",
	}, []string{"result"})

	// SearchDuration observes search request latency.
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "asset_explorer_search_duration_seconds",
		Help:    "Latency of search evaluations",
		Buckets: prometheus.DefBuckets,
	})

	// ExportJobs counts export job outcomes.
	ExportJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_explorer_export_jobs_total",
		Help: "Export jobs processed, by outcome",
	}, []string{"outcome"})

	// AudioConversions counts ffmpeg conversions by target format.
	AudioConversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_explorer_audio_conversions_total",
		Help: "Audio conversions run through ffmpeg, by target format",
	}, []string{"format"})

	// HTTPRequests counts HTTP requests by route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_explorer_http_requests_total",
		Help: "HTTP requests served, by route and status class",
	}, []string{"route", "status"})

	// HTTPInFlight tracks requests currently being served.
	HTTPInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asset_explorer_http_requests_in_flight",
		Help: "HTTP requests currently being served",
	})

	// HTTPDuration observes HTTP request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "asset_explorer_http_request_duration_seconds",
		Help:    "HTTP request latency, by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
