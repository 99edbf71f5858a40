package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/secunda/directory"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Query engine metrics
	QueriesTotal      metric.Int64Counter
	QueryErrorsTotal  metric.Int64Counter
	QueryDuration     metric.Float64Histogram
	QueryResultsTotal metric.Int64Counter

	// Proximity search metrics
	BuildingsScannedTotal metric.Int64Counter
	BuildingsSkippedTotal metric.Int64Counter

	// Hierarchy metrics
	HierarchyNodesResolved metric.Int64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// Tracer returns the tracer used for query engine spans.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	m := &Metrics{}

	m.QueriesTotal, _ = meter.Int64Counter(
		"directory.queries.total",
		metric.WithDescription("Total number of directory queries"),
		metric.WithUnit("{query}"),
	)

	m.QueryErrorsTotal, _ = meter.Int64Counter(
		"directory.queries.errors.total",
		metric.WithDescription("Total number of directory queries that returned an error"),
		metric.WithUnit("{error}"),
	)

	m.QueryDuration, _ = meter.Float64Histogram(
		"directory.queries.duration",
		metric.WithDescription("Duration of directory queries"),
		metric.WithUnit("ms"),
	)

	m.QueryResultsTotal, _ = meter.Int64Counter(
		"directory.queries.results.total",
		metric.WithDescription("Total number of items returned by directory queries"),
		metric.WithUnit("{item}"),
	)

	m.BuildingsScannedTotal, _ = meter.Int64Counter(
		"directory.nearby.buildings_scanned.total",
		metric.WithDescription("Total number of candidate buildings examined by proximity searches"),
		metric.WithUnit("{building}"),
	)

	m.BuildingsSkippedTotal, _ = meter.Int64Counter(
		"directory.nearby.buildings_skipped.total",
		metric.WithDescription("Total number of candidate buildings skipped because of an unparseable coordinate"),
		metric.WithUnit("{building}"),
	)

	m.HierarchyNodesResolved, _ = meter.Int64Histogram(
		"directory.hierarchy.nodes",
		metric.WithDescription("Number of activities in each resolved hierarchy"),
		metric.WithUnit("{activity}"),
	)

	return m
}
