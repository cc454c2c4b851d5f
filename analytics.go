package cakes

import (
	"math"
	"sort"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TreeAnalytics tracks operational statistics for a Tree: how often it is
// built and searched, and how long those operations take. All counters
// are safe for concurrent use.
type TreeAnalytics struct {
	BuildCount  atomic.Int64
	SearchCount atomic.Int64

	TotalSearchTimeNs atomic.Int64
	LastSearchTimeNs  atomic.Int64
	MinSearchTimeNs   atomic.Int64
	MaxSearchTimeNs   atomic.Int64
	LastSearchAt      atomic.Int64 // Unix nanoseconds
	CreatedAt         time.Time
}

// NewTreeAnalytics creates a new analytics tracker.
func NewTreeAnalytics() *TreeAnalytics {
	a := &TreeAnalytics{CreatedAt: time.Now()}
	a.MinSearchTimeNs.Store(math.MaxInt64)
	return a
}

// RecordBuild records that a tree was built.
func (a *TreeAnalytics) RecordBuild() { a.BuildCount.Add(1) }

// RecordSearch records a search operation with its wall-clock duration.
func (a *TreeAnalytics) RecordSearch(duration time.Duration) {
	ns := duration.Nanoseconds()
	a.SearchCount.Add(1)
	a.TotalSearchTimeNs.Add(ns)
	a.LastSearchTimeNs.Store(ns)
	a.LastSearchAt.Store(time.Now().UnixNano())

	for {
		cur := a.MinSearchTimeNs.Load()
		if ns >= cur || a.MinSearchTimeNs.CompareAndSwap(cur, ns) {
			break
		}
	}
	for {
		cur := a.MaxSearchTimeNs.Load()
		if ns <= cur || a.MaxSearchTimeNs.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// Snapshot returns a point-in-time view of the analytics.
func (a *TreeAnalytics) Snapshot() TreeAnalyticsSnapshot {
	avgNs := int64(0)
	sc := a.SearchCount.Load()
	if sc > 0 {
		avgNs = a.TotalSearchTimeNs.Load() / sc
	}
	minNs := a.MinSearchTimeNs.Load()
	if minNs == math.MaxInt64 {
		minNs = 0
	}
	return TreeAnalyticsSnapshot{
		BuildCount:       a.BuildCount.Load(),
		SearchCount:      sc,
		AvgSearchTimeNs:  avgNs,
		MinSearchTimeNs:  minNs,
		MaxSearchTimeNs:  a.MaxSearchTimeNs.Load(),
		LastSearchTimeNs: a.LastSearchTimeNs.Load(),
		LastSearchAt:     time.Unix(0, a.LastSearchAt.Load()),
		CreatedAt:        a.CreatedAt,
	}
}

// Reset zeroes all counters.
func (a *TreeAnalytics) Reset() {
	a.BuildCount.Store(0)
	a.SearchCount.Store(0)
	a.TotalSearchTimeNs.Store(0)
	a.LastSearchTimeNs.Store(0)
	a.MinSearchTimeNs.Store(math.MaxInt64)
	a.MaxSearchTimeNs.Store(0)
	a.LastSearchAt.Store(0)
}

// TreeAnalyticsSnapshot is an immutable snapshot for reporting/serialization.
type TreeAnalyticsSnapshot struct {
	BuildCount       int64     `json:"buildCount"`
	SearchCount      int64     `json:"searchCount"`
	AvgSearchTimeNs  int64     `json:"avgSearchTimeNs"`
	MinSearchTimeNs  int64     `json:"minSearchTimeNs"`
	MaxSearchTimeNs  int64     `json:"maxSearchTimeNs"`
	LastSearchTimeNs int64     `json:"lastSearchTimeNs"`
	LastSearchAt     time.Time `json:"lastSearchAt"`
	CreatedAt        time.Time `json:"createdAt"`
}

// DistributionStats summarizes a batch of search-result distances.
type DistributionStats struct {
	Count      int       `json:"count"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Mean       float64   `json:"mean"`
	Median     float64   `json:"median"`
	StdDev     float64   `json:"stdDev"`
	Variance   float64   `json:"variance"`
	Skewness   float64   `json:"skewness"`
	P25        float64   `json:"p25"`
	P75        float64   `json:"p75"`
	P90        float64   `json:"p90"`
	P99        float64   `json:"p99"`
	ComputedAt time.Time `json:"computedAt"`
}

// ComputeDistributionStats summarizes distances using gonum/stat for the
// moments and quantiles.
func ComputeDistributionStats(distances []float64) DistributionStats {
	n := len(distances)
	if n == 0 {
		return DistributionStats{ComputedAt: time.Now()}
	}

	sorted := make([]float64, n)
	copy(sorted, distances)
	sort.Float64s(sorted)

	mean, variance := stat.MeanVariance(sorted, nil)
	return DistributionStats{
		Count:      n,
		Min:        sorted[0],
		Max:        sorted[n-1],
		Mean:       mean,
		Median:     stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev:     math.Sqrt(variance),
		Variance:   variance,
		Skewness:   stat.Skew(sorted, nil),
		P25:        stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P75:        stat.Quantile(0.75, stat.Empirical, sorted, nil),
		P90:        stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P99:        stat.Quantile(0.99, stat.Empirical, sorted, nil),
		ComputedAt: time.Now(),
	}
}

// TreeShapeStats summarizes the shape of a built tree: how balanced it
// is and how deep it goes, useful for comparing partition strategies.
type TreeShapeStats struct {
	NumClusters  int     `json:"numClusters"`
	NumLeaves    int     `json:"numLeaves"`
	MaxDepth     int     `json:"maxDepth"`
	MeanRadius   float64 `json:"meanRadius"`
	MeanLFD      float64 `json:"meanLFD"`
}

// ComputeTreeShapeStats walks every cluster in t and summarizes its shape.
func ComputeTreeShapeStats[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A]) TreeShapeStats {
	clusters := t.SortedClusters()
	radii := make([]float64, len(clusters))
	lfds := make([]float64, len(clusters))
	var leaves, maxDepth int
	for i, c := range clusters {
		radii[i] = ToF64(c.Radius)
		lfds[i] = c.LFD
		if c.IsLeaf() {
			leaves++
		}
		if c.Depth > maxDepth {
			maxDepth = c.Depth
		}
	}
	return TreeShapeStats{
		NumClusters: len(clusters),
		NumLeaves:   leaves,
		MaxDepth:    maxDepth,
		MeanRadius:  stat.Mean(radii, nil),
		MeanLFD:     stat.Mean(lfds, nil),
	}
}
