package cakes

import (
	"testing"
	"time"
)

func TestTreeAnalyticsRecordsBuildsAndSearches(t *testing.T) {
	a := NewTreeAnalytics()
	a.RecordBuild()
	a.RecordBuild()
	a.RecordSearch(10 * time.Millisecond)
	a.RecordSearch(30 * time.Millisecond)

	snap := a.Snapshot()
	if snap.BuildCount != 2 {
		t.Fatalf("BuildCount = %d, want 2", snap.BuildCount)
	}
	if snap.SearchCount != 2 {
		t.Fatalf("SearchCount = %d, want 2", snap.SearchCount)
	}
	if snap.MinSearchTimeNs != (10 * time.Millisecond).Nanoseconds() {
		t.Fatalf("MinSearchTimeNs = %d, want %d", snap.MinSearchTimeNs, (10 * time.Millisecond).Nanoseconds())
	}
	if snap.MaxSearchTimeNs != (30 * time.Millisecond).Nanoseconds() {
		t.Fatalf("MaxSearchTimeNs = %d, want %d", snap.MaxSearchTimeNs, (30 * time.Millisecond).Nanoseconds())
	}
	wantAvg := (10 + 30) * time.Millisecond.Nanoseconds() / 2
	if snap.AvgSearchTimeNs != wantAvg {
		t.Fatalf("AvgSearchTimeNs = %d, want %d", snap.AvgSearchTimeNs, wantAvg)
	}
}

func TestTreeAnalyticsResetZeroesCounters(t *testing.T) {
	a := NewTreeAnalytics()
	a.RecordBuild()
	a.RecordSearch(5 * time.Millisecond)
	a.Reset()

	snap := a.Snapshot()
	if snap.BuildCount != 0 || snap.SearchCount != 0 || snap.MinSearchTimeNs != 0 || snap.MaxSearchTimeNs != 0 {
		t.Fatalf("Reset did not zero all counters: %+v", snap)
	}
}

func TestComputeDistributionStatsEmpty(t *testing.T) {
	stats := ComputeDistributionStats(nil)
	if stats.Count != 0 {
		t.Fatalf("ComputeDistributionStats(nil).Count = %d, want 0", stats.Count)
	}
}

func TestComputeDistributionStatsBasics(t *testing.T) {
	stats := ComputeDistributionStats([]float64{1, 2, 3, 4, 5})
	if stats.Count != 5 {
		t.Fatalf("Count = %d, want 5", stats.Count)
	}
	if stats.Min != 1 || stats.Max != 5 {
		t.Fatalf("Min/Max = %v/%v, want 1/5", stats.Min, stats.Max)
	}
	if stats.Mean != 3 {
		t.Fatalf("Mean = %v, want 3", stats.Mean)
	}
	if stats.Median != 3 {
		t.Fatalf("Median = %v, want 3", stats.Median)
	}
}

func TestComputeTreeShapeStats(t *testing.T) {
	items := intItems([2]int{0, 0}, [2]int{1, 1}, [2]int{2, 2}, [2]int{3, 3}, [2]int{10, 10})
	tr, err := Build(items, manhattan2D, DefaultStrategy[int, struct{}](), noopAnnotator)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	shape := ComputeTreeShapeStats(tr)
	if shape.NumClusters != len(tr.SortedClusters()) {
		t.Fatalf("NumClusters = %d, want %d", shape.NumClusters, len(tr.SortedClusters()))
	}
	if shape.NumLeaves == 0 {
		t.Fatalf("NumLeaves = 0, want at least one leaf")
	}
	if shape.MaxDepth < 1 {
		t.Fatalf("MaxDepth = %d, want >= 1 for a non-trivial tree", shape.MaxDepth)
	}
}
