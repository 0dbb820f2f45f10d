package prometheus

import (
	"strconv"
	"time"
)

// SplitMetrics holds the scaffold-split metric families.
type SplitMetrics struct {
	// Extraction
	ExtractionsTotal   CounterVec
	ExtractionDuration HistogramVec

	// Split runs
	SplitRunsTotal     CounterVec
	SplitDuration      HistogramVec
	PartitionMolecules GaugeVec
	PartitionScaffolds GaugeVec

	// Scaffold cache
	CacheLookupsTotal CounterVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
}

// Default Buckets
var (
	DefaultExtractionBuckets   = []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05, .1}
	DefaultSplitBuckets        = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300}
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
)

// NewSplitMetrics registers all metrics on collector.
func NewSplitMetrics(collector MetricsCollector) *SplitMetrics {
	m := &SplitMetrics{}

	m.ExtractionsTotal = collector.RegisterCounter("scaffold_extractions_total", "Scaffold extractor calls", "status")
	m.ExtractionDuration = collector.RegisterHistogram("scaffold_extraction_duration_seconds", "Scaffold extractor call duration", DefaultExtractionBuckets, "status")

	m.SplitRunsTotal = collector.RegisterCounter("split_runs_total", "Scaffold split runs", "policy", "status")
	m.SplitDuration = collector.RegisterHistogram("split_duration_seconds", "Scaffold split duration", DefaultSplitBuckets, "policy")
	m.PartitionMolecules = collector.RegisterGauge("partition_molecules", "Molecules in each partition of the last split", "side")
	m.PartitionScaffolds = collector.RegisterGauge("partition_scaffolds", "Scaffold groups in each partition of the last split", "side")

	m.CacheLookupsTotal = collector.RegisterCounter("scaffold_cache_lookups_total", "Scaffold cache lookups", "result")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	return m
}

// ObserveExtraction records one extractor call.
func (m *SplitMetrics) ObserveExtraction(status string, elapsed time.Duration) {
	m.ExtractionsTotal.WithLabelValues(status).Inc()
	m.ExtractionDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// ObserveCacheLookup records a scaffold cache hit or miss.
func (m *SplitMetrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordSplit records a finished split run.  Partition gauges are only
// updated for successful runs.
func (m *SplitMetrics) RecordSplit(policy string, err error, elapsed time.Duration, trainMols, testMols, trainScaffolds, testScaffolds int) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.SplitRunsTotal.WithLabelValues(policy, status).Inc()
	m.SplitDuration.WithLabelValues(policy).Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	m.PartitionMolecules.WithLabelValues("train").Set(float64(trainMols))
	m.PartitionMolecules.WithLabelValues("test").Set(float64(testMols))
	m.PartitionScaffolds.WithLabelValues("train").Set(float64(trainScaffolds))
	m.PartitionScaffolds.WithLabelValues("test").Set(float64(testScaffolds))
}

// RecordHTTPRequest records one served request.
func (m *SplitMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

//Personal.AI order the ending
