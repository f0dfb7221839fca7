// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the converters and runner.
const (
	// Conversion metrics.
	MetricLinesRead      = "marlinflow_lines_read_total"
	MetricRecordsWritten = "marlinflow_records_written_total"
	MetricParseErrors    = "marlinflow_parse_errors_total"
	MetricScore          = "marlinflow_score_centipawns"

	// Run metrics.
	MetricRuns        = "marlinflow_runs_total"
	MetricRunFailures = "marlinflow_run_failures_total"
	MetricRunSeconds  = "marlinflow_run_seconds"
	MetricLastRecords = "marlinflow_last_run_records"
)

// ScoreBuckets are histogram buckets suited to centipawn scores.
var ScoreBuckets = []float64{-750, -500, -300, -100, -50, 0, 50, 100, 300, 500, 750}

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
