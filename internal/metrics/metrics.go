// Package metrics provides Prometheus metrics for the in-memory file system.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ResultOK is the result label of successful operations
const ResultOK = "ok"

var (
	// Engine operation metrics
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memfs_operations_total",
			Help: "Total number of engine operations by result",
		},
		[]string{"op", "result"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memfs_operation_duration_seconds",
			Help:    "Engine operation duration in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"op"},
	)

	// Tree metrics
	treeNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "memfs_tree_nodes",
			Help: "Number of files and directories in the tree, root included",
		},
	)

	bytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memfs_content_bytes_written_total",
			Help: "Total bytes written to file content",
		},
	)

	bytesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memfs_content_bytes_read_total",
			Help: "Total bytes returned from file reads",
		},
	)

	// Event metrics
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memfs_events_published_total",
			Help: "Total structural change events published by type",
		},
		[]string{"type"},
	)

	watchersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "memfs_watchers_active",
			Help: "Number of active watch subscriptions",
		},
	)
)

// RecordOperation records one engine operation with its result label
func RecordOperation(op, result string, duration time.Duration) {
	operationsTotal.WithLabelValues(op, result).Inc()
	operationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetTreeNodes sets the current node count
func SetTreeNodes(n int64) {
	treeNodes.Set(float64(n))
}

// AddBytesWritten adds to the written content counter
func AddBytesWritten(n int) {
	bytesWritten.Add(float64(n))
}

// AddBytesRead adds to the read content counter
func AddBytesRead(n int) {
	bytesRead.Add(float64(n))
}

// RecordEvent counts a published change event
func RecordEvent(eventType string) {
	eventsPublished.WithLabelValues(eventType).Inc()
}

// SetWatchersActive sets the number of active watch subscriptions
func SetWatchersActive(n int) {
	watchersActive.Set(float64(n))
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
