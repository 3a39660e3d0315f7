// Package metrics provides Prometheus metrics for the Trellis service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedRefreshesTotal tracks suggested feed recomputes by outcome
	FeedRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "feed",
			Name:      "refreshes_total",
			Help:      "Total number of suggested feed recomputes by status",
		},
		[]string{"status"},
	)

	// FeedRefreshDuration tracks how long a full feed recompute takes
	FeedRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trellis",
			Subsystem: "feed",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of suggested feed recomputes in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// FeedCacheHits tracks feed cache lookups by result
	FeedCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "feed",
			Name:      "cache_lookups_total",
			Help:      "Total number of feed cache lookups by result",
		},
		[]string{"result"},
	)

	// AccessMapRebuildsTotal tracks access map rebuilds by outcome
	AccessMapRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "accessmap",
			Name:      "rebuilds_total",
			Help:      "Total number of access map rebuilds by status",
		},
		[]string{"status"},
	)

	// AccessMapRebuildDuration tracks access map rebuild duration
	AccessMapRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trellis",
			Subsystem: "accessmap",
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of access map rebuilds in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// AccessMapNodes reports the node count of the most recent rebuild
	AccessMapNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trellis",
			Subsystem: "accessmap",
			Name:      "nodes",
			Help:      "Node count of the most recently rebuilt access map",
		},
	)

	// InteractionsIngestedTotal tracks interaction intake by source and status
	InteractionsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "interactions",
			Name:      "ingested_total",
			Help:      "Total number of interactions ingested by source and status",
		},
		[]string{"source", "status"},
	)

	// OrbitRowsImported tracks connection rows imported from orbit uploads
	OrbitRowsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "orbit",
			Name:      "rows_total",
			Help:      "Total number of orbit upload rows by outcome",
		},
		[]string{"outcome"},
	)

	// ScenarioRunsTotal tracks forecast runs by scenario type
	ScenarioRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "forecast",
			Name:      "scenario_runs_total",
			Help:      "Total number of scenario forecast runs by type",
		},
		[]string{"scenario_type"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaMessagesConsumed tracks Kafka messages consumed by outcome
	KafkaMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "kafka",
			Name:      "messages_consumed_total",
			Help:      "Total number of messages consumed from Kafka by outcome",
		},
		[]string{"topic", "status"},
	)

	// GraphMirrorSyncsTotal tracks graph mirror projections by outcome
	GraphMirrorSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "graph_mirror",
			Name:      "syncs_total",
			Help:      "Total number of graph mirror projections by status",
		},
		[]string{"status"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trellis",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	// HTTPRequestsTotal tracks handled HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trellis",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)
)

// RecordFeedRefresh records a feed recompute
func RecordFeedRefresh(status string, durationSeconds float64) {
	FeedRefreshesTotal.WithLabelValues(status).Inc()
	FeedRefreshDuration.Observe(durationSeconds)
}

// RecordFeedCacheLookup records a feed cache hit or miss
func RecordFeedCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	FeedCacheHits.WithLabelValues(result).Inc()
}

// RecordAccessMapRebuild records an access map rebuild
func RecordAccessMapRebuild(status string, nodes int, durationSeconds float64) {
	AccessMapRebuildsTotal.WithLabelValues(status).Inc()
	AccessMapRebuildDuration.Observe(durationSeconds)
	if status == "success" {
		AccessMapNodes.Set(float64(nodes))
	}
}

// RecordInteractionIngested records one interaction intake attempt
func RecordInteractionIngested(source, status string) {
	InteractionsIngestedTotal.WithLabelValues(source, status).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}

// RecordKafkaConsume records a consumed Kafka message outcome
func RecordKafkaConsume(topic, status string) {
	KafkaMessagesConsumed.WithLabelValues(topic, status).Inc()
}

// RecordGraphMirrorSync records a graph mirror projection outcome
func RecordGraphMirrorSync(status string) {
	GraphMirrorSyncsTotal.WithLabelValues(status).Inc()
}

// RecordScenarioRun records a recorded forecast run
func RecordScenarioRun(scenarioType string) {
	ScenarioRunsTotal.WithLabelValues(scenarioType).Inc()
}

// RecordOrbitRows records a batch of orbit upload rows with one outcome
func RecordOrbitRows(outcome string, count int) {
	if count <= 0 {
		return
	}
	OrbitRowsImported.WithLabelValues(outcome).Add(float64(count))
}

// RecordHTTPRequest records one handled HTTP request
func RecordHTTPRequest(method, route string, status int, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
