package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitMetrics_Extraction(t *testing.T) {
	c := newTestCollector(t)
	m := NewSplitMetrics(c)

	m.ObserveExtraction("ok", time.Millisecond)
	m.ObserveExtraction("ok", time.Millisecond)
	m.ObserveExtraction("error", time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_scaffold_extractions_total{status="ok"} 2`)
	assert.Contains(t, out, `test_unit_scaffold_extractions_total{status="error"} 1`)
	assert.Contains(t, out, `test_unit_scaffold_extraction_duration_seconds_count{status="ok"} 2`)
}

func TestSplitMetrics_Cache(t *testing.T) {
	c := newTestCollector(t)
	m := NewSplitMetrics(c)

	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveCacheLookup(false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_scaffold_cache_lookups_total{result="hit"} 1`)
	assert.Contains(t, out, `test_unit_scaffold_cache_lookups_total{result="miss"} 2`)
}

func TestSplitMetrics_RecordSplit(t *testing.T) {
	c := newTestCollector(t)
	m := NewSplitMetrics(c)

	m.RecordSplit("greedy", nil, time.Second, 8, 2, 3, 1)
	m.RecordSplit("greedy", errors.New("boom"), time.Second, 0, 0, 0, 0)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_split_runs_total{policy="greedy",status="success"} 1`)
	assert.Contains(t, out, `test_unit_split_runs_total{policy="greedy",status="failure"} 1`)
	assert.Contains(t, out, `test_unit_partition_molecules{side="train"} 8`)
	assert.Contains(t, out, `test_unit_partition_scaffolds{side="test"} 1`)
}

func TestSplitMetrics_HTTP(t *testing.T) {
	c := newTestCollector(t)
	m := NewSplitMetrics(c)

	m.RecordHTTPRequest("POST", "/api/v1/splits", 200, 10*time.Millisecond)
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_http_requests_total{method="POST",path="/api/v1/splits",status_code="200"} 1`)
}

//Personal.AI order the ending
