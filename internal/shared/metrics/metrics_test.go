package metrics

import (
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{1, 5, 10})
	h.Observe(0.5)
	h.Observe(3)
	h.Observe(7)
	h.Observe(100)

	snap := h.Snapshot()
	if snap.count != 4 {
		t.Fatalf("count = %d, want 4", snap.count)
	}
	// one observation per finite bucket, the outlier only in +Inf
	want := []uint64{1, 1, 1}
	for i, got := range snap.counts {
		if got != want[i] {
			t.Fatalf("bucket %d count = %d, want %d", i, got, want[i])
		}
	}
	if snap.sum != 110.5 {
		t.Fatalf("sum = %v, want 110.5", snap.sum)
	}
}

func TestRenderIncludesExtractionSeries(t *testing.T) {
	IncExtractionStarted()
	IncExtractionCompleted()
	ObserveExtractionDurationMs(12)
	ObserveTestsDetected(3)

	out := Render()
	for _, series := range []string{
		"extraction_started_total",
		"extraction_completed_total",
		"extraction_failed_total",
		"extraction_duration_ms_bucket",
		"extraction_tests_detected_count",
	} {
		if !strings.Contains(out, series) {
			t.Fatalf("render output missing %s:\n%s", series, out)
		}
	}
}
