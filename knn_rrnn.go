package cakes

import "math"

// KnnRrnn answers a k-nearest-neighbor query by repeated ranged search:
// estimate a radius expected to cover k items, run RnnChess at that
// radius, and inflate the radius (guided by local fractal dimension)
// until at least k items are confirmed (§4.6.5).
func KnnRrnn[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, k int) []Hit[T] {
	root := t.Root()
	if k > root.Cardinality {
		return Linear(t, query, 0)
	}

	radius := radiusForK(root)(k)
	centers, subsumed, straddlers := treeSearch(t, root, query, FromF64[T](radius))
	confirmed := countHits(centers, subsumed)

	for confirmed < k {
		multiplier := 2.0
		if confirmed > 0 {
			multiplier = lfdMultiplier(t, centers, subsumed, straddlers, k, confirmed)
		}
		radius *= multiplier
		centers, subsumed, straddlers = treeSearch(t, root, query, FromF64[T](radius))
		confirmed = countHits(centers, subsumed)
	}

	return collectRrnnHits(t, query, k, centers, subsumed, straddlers)
}

// ParKnnRrnn is the parallel counterpart of KnnRrnn.
func ParKnnRrnn[Id any, I any, T DistanceValue, A any](rt *Runtime, t *Tree[Id, I, T, A], query I, k int) []Hit[T] {
	if rt == nil {
		rt = defaultRuntime
	}
	root := t.Root()
	if k > root.Cardinality {
		return ParLinear(rt, t, query, 0)
	}

	radius := radiusForK(root)(k)
	centers, subsumed, straddlers := parTreeSearch(rt, t, root, query, FromF64[T](radius))
	confirmed := countHits(centers, subsumed)

	for confirmed < k {
		multiplier := 2.0
		if confirmed > 0 {
			multiplier = lfdMultiplier(t, centers, subsumed, straddlers, k, confirmed)
		}
		radius *= multiplier
		centers, subsumed, straddlers = parTreeSearch(rt, t, root, query, FromF64[T](radius))
		confirmed = countHits(centers, subsumed)
	}

	return parCollectRrnnHits(rt, t, query, k, centers, subsumed, straddlers)
}

// radiusForK returns a closure estimating the radius expected to cover k
// items from root, using root's LFD as the local density exponent.
func radiusForK[T DistanceValue, A any](root *Cluster[T, A]) func(k int) float64 {
	r := ToF64(root.Radius)
	n := root.Cardinality
	return func(k int) float64 {
		if n == k {
			return r
		}
		return r * math.Pow(float64(k)/float64(n), 1/root.LFD)
	}
}

// countHits returns the number of items already guaranteed present:
// every confirmed center, plus every non-center item of a subsumed
// cluster.
func countHits[T DistanceValue, A any](centers []Hit[T], subsumed []*Cluster[T, A]) int {
	n := len(centers)
	for _, c := range subsumed {
		n += c.Cardinality - 1
	}
	return n
}

// lfdMultiplier computes the radius-inflation factor from the harmonic
// mean of the LFDs observed among confirmed centers, subsumed clusters,
// and straddling clusters (§4.6.5).
func lfdMultiplier[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], centers []Hit[T], subsumed, straddlers []*Cluster[T, A], k, numConfirmed int) float64 {
	radialDistances := make([]T, len(centers))
	for i, h := range centers {
		radialDistances[i] = h.Distance
	}
	var radius T
	if len(radialDistances) > 0 {
		radius = radialDistances[argmaxIndex(len(radialDistances), func(i int) T { return radialDistances[i] })]
	}
	lfdRecipSum := 1.0 / lfdEstimate(radialDistances, radius)

	for _, c := range subsumed {
		lfdRecipSum += 1.0 / c.LFD
	}
	for _, c := range straddlers {
		lfdRecipSum += 1.0 / c.LFD
	}

	nSamples := float64(len(subsumed) + len(straddlers) + 1)
	lfdHarmonicMeanInv := lfdRecipSum / nSamples

	m := math.Pow(float64(k)/float64(numConfirmed), lfdHarmonicMeanInv)
	m = math.Nextafter(m, math.Inf(1))
	return math.Min(math.Max(m, math.Nextafter(1.0, math.Inf(1))), 2.0)
}

func collectRrnnHits[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, k int, centers []Hit[T], subsumed, straddlers []*Cluster[T, A]) []Hit[T] {
	heap := NewSizedHeap[int, T](k)
	pushed := make(map[int]bool, len(centers))
	for _, h := range centers {
		heap.Push(h.ItemIndex, h.Distance)
		pushed[h.ItemIndex] = true
	}
	for _, c := range append(append([]*Cluster[T, A]{}, subsumed...), straddlers...) {
		items := t.ItemsOf(c)
		if c.IsSingleton() {
			if !pushed[c.CenterIndex] {
				heap.Push(c.CenterIndex, t.metric(query, items[0].Value))
			}
			continue
		}
		for i, it := range items {
			if !pushed[c.CenterIndex+i] {
				heap.Push(c.CenterIndex+i, t.metric(query, it.Value))
			}
		}
	}
	return toHits(heap.SortedEntries())
}

func parCollectRrnnHits[Id any, I any, T DistanceValue, A any](rt *Runtime, t *Tree[Id, I, T, A], query I, k int, centers []Hit[T], subsumed, straddlers []*Cluster[T, A]) []Hit[T] {
	heap := NewSizedHeap[int, T](k)
	pushed := make(map[int]bool, len(centers))
	for _, h := range centers {
		heap.Push(h.ItemIndex, h.Distance)
		pushed[h.ItemIndex] = true
	}

	balls := append(append([]*Cluster[T, A]{}, subsumed...), straddlers...)
	type leafHits struct {
		idx  []int
		dist []T
	}
	perBall := make([]leafHits, len(balls))
	_ = rt.forEach(len(balls), func(i int) error {
		c := balls[i]
		items := t.ItemsOf(c)
		if c.IsSingleton() {
			d := t.metric(query, items[0].Value)
			perBall[i] = leafHits{idx: []int{c.CenterIndex}, dist: []T{d}}
			return nil
		}
		idx := make([]int, len(items))
		dist := make([]T, len(items))
		for j, it := range items {
			idx[j] = c.CenterIndex + j
			dist[j] = t.metric(query, it.Value)
		}
		perBall[i] = leafHits{idx: idx, dist: dist}
		return nil
	})
	for _, lh := range perBall {
		for i := range lh.idx {
			if !pushed[lh.idx[i]] {
				heap.Push(lh.idx[i], lh.dist[i])
			}
		}
	}
	return toHits(heap.SortedEntries())
}

func toHits[T DistanceValue](entries []HeapEntry[int, T]) []Hit[T] {
	out := make([]Hit[T], len(entries))
	for i, e := range entries {
		out[i] = Hit[T]{ItemIndex: e.Elem, Distance: e.Dist}
	}
	return out
}
