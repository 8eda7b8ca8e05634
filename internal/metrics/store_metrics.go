package metrics

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Synchronized-store metrics. These variables will be nil if metrics are
// disabled.
var (
	SnapshotsTotal      *prometheus.CounterVec
	RecordsDecodedTotal *prometheus.CounterVec
	CacheSize           *prometheus.GaugeVec
	MutationsTotal      *prometheus.CounterVec
	MutationDuration    *prometheus.HistogramVec
	ChangeEventsTotal   *prometheus.CounterVec
)

// initializeStoreMetrics initializes store metrics if they haven't been
// initialized yet
func initializeStoreMetrics() {
	if SnapshotsTotal != nil {
		return // Already initialized
	}

	SnapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_snapshots_total",
			Help: "Total number of remote snapshots applied per collection",
		},
		[]string{"collection"},
	)

	RecordsDecodedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_records_decoded_total",
			Help: "Total number of snapshot records decoded per collection",
		},
		[]string{"collection", "result"}, // "ok", "skipped"
	)

	CacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_cache_size",
			Help: "Number of entities currently cached per collection",
		},
		[]string{"collection"},
	)

	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_mutations_total",
			Help: "Total number of write-through mutations per collection",
		},
		[]string{"collection", "operation", "result"}, // op: "create", "update", "delete", "set_field"
	)

	MutationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_mutation_duration_seconds",
			Help:    "Duration of write-through mutations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "operation"},
	)

	ChangeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_change_events_total",
			Help: "Total number of change events published per collection",
		},
		[]string{"collection"},
	)

	mm := GetInstance()
	mm.registry.MustRegister(
		SnapshotsTotal,
		RecordsDecodedTotal,
		CacheSize,
		MutationsTotal,
		MutationDuration,
		ChangeEventsTotal,
	)
}

// RecordSnapshot records one applied snapshot and the resulting cache size
func RecordSnapshot(collection string, decoded, skipped, cacheSize int) {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeStoreMetrics()

	SnapshotsTotal.WithLabelValues(collection).Inc()
	RecordsDecodedTotal.WithLabelValues(collection, "ok").Add(float64(decoded))
	RecordsDecodedTotal.WithLabelValues(collection, "skipped").Add(float64(skipped))
	CacheSize.WithLabelValues(collection).Set(float64(cacheSize))
}

// RecordMutation records one write-through mutation
func RecordMutation(collection, operation, result string, duration time.Duration) {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeStoreMetrics()

	MutationsTotal.WithLabelValues(collection, operation, result).Inc()
	MutationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

// RecordChangeEvent records one published change event
func RecordChangeEvent(collection string) {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeStoreMetrics()

	ChangeEventsTotal.WithLabelValues(collection).Inc()
}
