package cakes

import "math"

// numItemsForGeometricMedian caps how many items are considered when
// locating a cluster's center, trading exactness for sub-quadratic cost on
// large clusters (§4.4).
func numItemsForGeometricMedian(cardinality int) int {
	if cardinality <= 100 {
		return cardinality
	}
	if cardinality <= 10100 {
		return 100 + int(math.Sqrt(float64(cardinality-100)))
	}
	return 200 + int(math.Log2(float64(cardinality-10100)))
}

// geometricMedianIndex returns the index of the item minimizing the sum of
// distances to every other item in items, by brute-force pairwise
// evaluation. items must be non-empty.
func geometricMedianIndex[Id any, I any, T DistanceValue](items []Item[Id, I], metric Metric[I, T]) int {
	n := len(items)
	matrix := make([][]T, n)
	for r := range matrix {
		matrix[r] = make([]T, n)
	}
	for r := 0; r < n; r++ {
		for c := 0; c < r; c++ {
			d := metric(items[r].Value, items[c].Value)
			matrix[r][c] = d
			matrix[c][r] = d
		}
	}
	return argminIndex(n, func(i int) T {
		var sum T
		for _, d := range matrix[i] {
			sum += d
		}
		return sum
	})
}

// swapCenterToFront moves the geometric median of items[:n] to items[0],
// where n = numItemsForGeometricMedian(len(items)), if items has more than
// two elements.
func swapCenterToFront[Id any, I any, T DistanceValue](items []Item[Id, I], metric Metric[I, T]) {
	if len(items) <= 2 {
		return
	}
	n := numItemsForGeometricMedian(len(items))
	ci := geometricMedianIndex(items[:n], metric)
	items[0], items[ci] = items[ci], items[0]
}

// lfdEstimate computes the local fractal dimension from the radial
// distances of a cluster's non-center items and its radius (§4.4).
func lfdEstimate[T DistanceValue](distances []T, radius T) float64 {
	halfRadius := Half(radius)
	if len(distances) < 2 || halfRadius == Zero[T]() {
		return 1.0
	}
	halfCount := 0
	for _, d := range distances {
		if d <= halfRadius {
			halfCount++
		}
	}
	return math.Log2(float64(len(distances)+1) / float64(halfCount+1))
}

// newCluster builds a Cluster from items (a non-empty contiguous slice
// owned by one cluster), reordering items in place so the chosen center
// sits at items[0] and, if the strategy decides to partition, the
// remaining items are grouped into contiguous sub-slices for each child.
//
// Depth, CenterIndex, ParentCenterIndex, and the indices inside the
// returned splits are all relative to this local slice; the tree builder
// fixes them up to be relative to the tree's full item array.
func newCluster[Id any, I any, T DistanceValue, A any](items []Item[Id, I], metric Metric[I, T], strategy PartitionStrategy[T, A]) (*Cluster[T, A], []localSplit[Id, I]) {
	c := &Cluster[T, A]{Cardinality: len(items), LFD: 1.0}

	if c.Cardinality == 1 {
		return c, nil
	}
	if c.Cardinality == 2 {
		c.Radius = metric(items[0].Value, items[1].Value)
		return c, nil
	}

	swapCenterToFront(items, metric)

	radial := make([]T, len(items)-1)
	for i := 1; i < len(items); i++ {
		radial[i-1] = metric(items[0].Value, items[i].Value)
	}
	radiusIndex := argmaxIndex(len(radial), func(i int) T { return radial[i] })
	c.Radius = radial[radiusIndex]
	c.LFD = lfdEstimate(radial, c.Radius)

	if !strategy.shouldPartition(c) {
		return c, nil
	}

	span, splits := splitStrategy(strategy, metric, items[1:], radiusIndex)
	c.Span = span
	c.ChildCenterIndices = make([]int, len(splits))
	for i, sp := range splits {
		c.ChildCenterIndices[i] = sp.LocalCenterIndex
	}
	return c, splits
}

// parNewCluster is the parallel counterpart of newCluster.
func parNewCluster[Id any, I any, T DistanceValue, A any](rt *Runtime, items []Item[Id, I], metric Metric[I, T], strategy PartitionStrategy[T, A]) (*Cluster[T, A], []localSplit[Id, I]) {
	c := &Cluster[T, A]{Cardinality: len(items), LFD: 1.0}

	if c.Cardinality == 1 {
		return c, nil
	}
	if c.Cardinality == 2 {
		c.Radius = metric(items[0].Value, items[1].Value)
		return c, nil
	}

	swapCenterToFront(items, metric)

	radial := make([]T, len(items)-1)
	pivot := items[0].Value
	_ = rt.forEach(len(items)-1, func(i int) error {
		radial[i] = metric(pivot, items[i+1].Value)
		return nil
	})
	radiusIndex := argmaxIndex(len(radial), func(i int) T { return radial[i] })
	c.Radius = radial[radiusIndex]
	c.LFD = lfdEstimate(radial, c.Radius)

	if !strategy.shouldPartition(c) {
		return c, nil
	}

	span, splits := parSplitStrategy(rt, strategy, metric, items[1:], radiusIndex)
	c.Span = span
	c.ChildCenterIndices = make([]int, len(splits))
	for i, sp := range splits {
		c.ChildCenterIndices[i] = sp.LocalCenterIndex
	}
	return c, splits
}
