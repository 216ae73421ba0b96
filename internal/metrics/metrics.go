package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	queryRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimestats_queries_total",
		Help: "Dashboard queries by operation and outcome",
	}, []string{"operation", "outcome"})

	queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crimestats_query_duration_seconds",
		Help:    "Dashboard query latency including the dataset load",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	sourceFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crimestats_source_fetch_duration_seconds",
		Help:    "Time spent reading the dataset from its source",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"source", "outcome"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimestats_dataset_cache_lookups_total",
		Help: "Dataset cache lookups by result",
	}, []string{"result"})

	snapshotRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crimestats_snapshot_records",
		Help: "Records in the most recently loaded snapshot",
	})

	storedRecordsDesc = prometheus.NewDesc(
		"crimestats_stored_records",
		"Rows in the crime_records table",
		nil,
		nil,
	)
)

// RecordCounter reports how many records the backing database holds.
type RecordCounter interface {
	CountCrimeRecords(ctx context.Context) (int64, error)
}

// StoredRecordsCollector is a custom Prometheus collector that counts stored
// records on each scrape.
type StoredRecordsCollector struct {
	counter RecordCounter
}

// Describe sends the metric descriptor to the channel.
func (c *StoredRecordsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- storedRecordsDesc
}

// Collect queries the database and emits the row count as a gauge.
func (c *StoredRecordsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := c.counter.CountCrimeRecords(ctx)
	if err != nil {
		slog.Error("failed to collect stored record metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(storedRecordsDesc, prometheus.GaugeValue, float64(n))
}

var initOnce sync.Once

// Init registers the collectors. counter may be nil when the dataset is not
// stored in Postgres. Must be called once at startup.
func Init(counter RecordCounter) {
	initOnce.Do(func() {
		prometheus.MustRegister(queryRequests, queryDuration, sourceFetchDuration, cacheLookups, snapshotRecords)
		if counter != nil {
			prometheus.MustRegister(&StoredRecordsCollector{counter: counter})
		}
	})
}

// Handler exposes the default registry as a Fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// ObserveQuery records one dashboard query.
func ObserveQuery(operation string, start time.Time, err error) {
	queryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	queryRequests.WithLabelValues(operation, outcome(err)).Inc()
}

// ObserveFetch records one read from a dataset source.
func ObserveFetch(source string, start time.Time, err error) {
	sourceFetchDuration.WithLabelValues(source, outcome(err)).Observe(time.Since(start).Seconds())
}

// CacheHit and CacheMiss count dataset cache lookups.
func CacheHit()  { cacheLookups.WithLabelValues("hit").Inc() }
func CacheMiss() { cacheLookups.WithLabelValues("miss").Inc() }

// SetSnapshotRecords records the size of the latest snapshot.
func SetSnapshotRecords(n int) {
	snapshotRecords.Set(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
