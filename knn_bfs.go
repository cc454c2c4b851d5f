package cakes

// bfsCandidate is one entry in KnnBfs's frontier: a cluster paired with
// d_max(cluster, query), which filterCandidates partitions on (§4.6.4).
type bfsCandidate[T DistanceValue, A any] struct {
	cluster *Cluster[T, A]
	d       T
}

// KnnBfs answers a k-nearest-neighbor query breadth-first: each level is
// first sieved down to the candidates that could still contribute a
// top-k item (via a cumulative-cardinality quick-partition), then each
// surviving candidate is either absorbed as a leaf or expanded into its
// children for the next level (§4.6.4).
func KnnBfs[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, k int) []Hit[T] {
	root := t.Root()
	if k > t.Len() {
		return Linear(t, query, 0)
	}

	hits := NewSizedHeap[int, T](k)
	d0 := t.metric(query, t.ItemAt(root.CenterIndex).Value)
	hits.Push(root.CenterIndex, d0)

	candidates := []bfsCandidate[T, A]{{cluster: root, d: dMax(d0, root.Radius)}}

	for len(candidates) > 0 {
		candidates = filterCandidates(candidates, k)
		var next []bfsCandidate[T, A]

		for _, cand := range candidates {
			c := cand.cluster
			if (len(next) <= k && c.Cardinality < k-len(next)) || c.IsLeaf() {
				absorbLeafBfs(t, query, c, cand.d, hits)
				continue
			}
			for _, child := range t.ChildrenOf(c) {
				cd := t.metric(query, t.ItemAt(child.CenterIndex).Value)
				hits.Push(child.CenterIndex, cd)
				next = append(next, bfsCandidate[T, A]{cluster: child, d: dMax(cd, child.Radius)})
			}
		}

		candidates = next
	}

	return toHits(hits.SortedEntries())
}

func absorbLeafBfs[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, c *Cluster[T, A], d T, hits *SizedHeap[int, T]) {
	for _, e := range leafEntriesBfs(t, query, c, d) {
		hits.Push(e.Elem, e.Dist)
	}
}

// leafEntriesBfs computes the (item index, distance) pairs a leaf
// contributes to the k-nearest-neighbor search, without touching a shared
// heap: ParKnnBfs computes these concurrently across leaves, one call per
// goroutine writing to its own slot, then pushes every result into the
// shared hits heap serially once all leaves are done.
func leafEntriesBfs[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, c *Cluster[T, A], d T) []HeapEntry[int, T] {
	items := t.ItemsOf(c)
	if c.IsSingleton() {
		out := make([]HeapEntry[int, T], 0, len(items)-1)
		for i := 1; i < len(items); i++ {
			out = append(out, HeapEntry[int, T]{Elem: c.CenterIndex + i, Dist: d})
		}
		return out
	}
	// The center is skipped: it was pushed when the cluster entered the
	// frontier.
	out := make([]HeapEntry[int, T], 0, len(items)-1)
	for i := 1; i < len(items); i++ {
		out = append(out, HeapEntry[int, T]{Elem: c.CenterIndex + i, Dist: t.metric(query, items[i].Value)})
	}
	return out
}

// ParKnnBfs is the parallel counterpart of KnnBfs.
func ParKnnBfs[Id any, I any, T DistanceValue, A any](rt *Runtime, t *Tree[Id, I, T, A], query I, k int) []Hit[T] {
	if rt == nil {
		rt = defaultRuntime
	}
	root := t.Root()
	if k > t.Len() {
		return ParLinear(rt, t, query, 0)
	}

	hits := NewSizedHeap[int, T](k)
	d0 := t.metric(query, t.ItemAt(root.CenterIndex).Value)
	hits.Push(root.CenterIndex, d0)

	candidates := []bfsCandidate[T, A]{{cluster: root, d: dMax(d0, root.Radius)}}

	for len(candidates) > 0 {
		candidates = filterCandidates(candidates, k)
		var next []bfsCandidate[T, A]

		leaves := make([]bfsCandidate[T, A], 0, len(candidates))
		parents := make([]bfsCandidate[T, A], 0, len(candidates))
		for _, cand := range candidates {
			c := cand.cluster
			if (len(next) <= k && c.Cardinality < k-len(next)) || c.IsLeaf() {
				leaves = append(leaves, cand)
			} else {
				parents = append(parents, cand)
			}
		}

		perLeaf := make([][]HeapEntry[int, T], len(leaves))
		_ = rt.forEach(len(leaves), func(i int) error {
			perLeaf[i] = leafEntriesBfs(t, query, leaves[i].cluster, leaves[i].d)
			return nil
		})
		for _, entries := range perLeaf {
			for _, e := range entries {
				hits.Push(e.Elem, e.Dist)
			}
		}

		for _, cand := range parents {
			for _, child := range t.ChildrenOf(cand.cluster) {
				cd := t.metric(query, t.ItemAt(child.CenterIndex).Value)
				hits.Push(child.CenterIndex, cd)
				next = append(next, bfsCandidate[T, A]{cluster: child, d: dMax(cd, child.Radius)})
			}
		}

		candidates = next
	}

	return toHits(hits.SortedEntries())
}

// filterCandidates keeps only the candidates whose lower-bound distance
// could still place them among the k nearest, using a quick-partition on
// cumulative guaranteed cardinality to find the cutoff in linear expected
// time (§4.6.4).
func filterCandidates[T DistanceValue, A any](candidates []bfsCandidate[T, A], k int) []bfsCandidate[T, A] {
	if len(candidates) == 0 {
		return candidates
	}
	thresholdIndex := quickPartition(candidates, k)
	threshold := candidates[thresholdIndex].d

	out := candidates[:0:0]
	for _, cand := range candidates {
		diam := cand.cluster.Radius + cand.cluster.Radius
		var dm T
		if cand.d <= diam {
			dm = Zero[T]()
		} else {
			dm = cand.d - diam
		}
		if dm <= threshold {
			out = append(out, cand)
		}
	}
	return out
}

// quickPartition reorders candidates in place and returns the index of
// the cluster whose cumulative guaranteed cardinality first reaches k.
func quickPartition[T DistanceValue, A any](items []bfsCandidate[T, A], k int) int {
	return qps(items, k, 0, len(items)-1)
}

func qps[T DistanceValue, A any](items []bfsCandidate[T, A], k, l, r int) int {
	if l >= r {
		return min(l, r)
	}
	pivot := l + (r-l)/2
	p := findPivot(items, l, r, pivot)

	guaranteedP := 0
	for i := 0; i < p; i++ {
		guaranteedP += items[i].cluster.Cardinality
	}

	switch {
	case guaranteedP == k:
		return p
	case guaranteedP < k:
		return qps(items, k, p+1, r)
	default:
		guaranteedPMinus1 := 0
		for i := 0; i < p-1; i++ {
			guaranteedPMinus1 += items[i].cluster.Cardinality
		}
		if p == 0 || guaranteedPMinus1 < k {
			return p
		}
		return qps(items, k, l, p-1)
	}
}

// findPivot partitions items[l:r+1] around items[pivot].d (Lomuto
// scheme) and returns the pivot's final position.
func findPivot[T DistanceValue, A any](items []bfsCandidate[T, A], l, r, pivot int) int {
	items[pivot], items[r] = items[r], items[pivot]

	a, b := l, l
	for b < r {
		if items[b].d < items[r].d {
			items[a], items[b] = items[b], items[a]
			a++
		}
		b++
	}
	items[a], items[r] = items[r], items[a]
	return a
}
