package cakes

// dfsCandidate is one entry in KnnDfs's candidates min-heap: a cluster
// plus the three-way key (d_min, d_max, d_center) it is ordered by.
type dfsCandidate[T DistanceValue, A any] struct {
	cluster           *Cluster[T, A]
	dMin, dMax, dCtr T
}

func dfsCandidateLess[T DistanceValue, A any](a, b dfsCandidate[T, A]) bool {
	if a.dMin != b.dMin {
		return a.dMin < b.dMin
	}
	if a.dMax != b.dMax {
		return a.dMax < b.dMax
	}
	return a.dCtr < b.dCtr
}

// KnnDfs answers a k-nearest-neighbor query by depth-first descent: a
// min-heap of candidate clusters ordered by (d_min, d_max, d_center) is
// popped down to leaves, whose items are absorbed into a bounded max-heap
// of the k best hits so far, with an early-stop once no remaining
// candidate can possibly improve on the current worst hit (§4.6.3).
func KnnDfs[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, k int) []Hit[T] {
	root := t.Root()
	if k >= root.Cardinality {
		return Linear(t, query, k)
	}

	candidates := NewPriorityQueue(dfsCandidateLess[T, A])
	hits := NewSizedHeap[int, T](k)

	rootDist := t.metric(query, t.ItemAt(root.CenterIndex).Value)
	candidates.Push(dfsCandidate[T, A]{cluster: root, dMin: dMin(rootDist, root.Radius), dMax: dMax(rootDist, root.Radius), dCtr: rootDist})
	hits.Push(root.CenterIndex, rootDist)

	for candidates.Len() > 0 {
		for {
			top, ok := candidates.Peek()
			if !ok || top.cluster.IsLeaf() {
				break
			}
			node, _ := candidates.Pop()
			for _, child := range t.ChildrenOf(node.cluster) {
				cd := t.metric(query, t.ItemAt(child.CenterIndex).Value)
				candidates.Push(dfsCandidate[T, A]{cluster: child, dMin: dMin(cd, child.Radius), dMax: dMax(cd, child.Radius), dCtr: cd})
				hits.Push(child.CenterIndex, cd)
			}
		}

		leaf, ok := candidates.Pop()
		if !ok {
			break
		}
		absorbLeafDfs(t, query, leaf.cluster, leaf.dCtr, hits)

		if hits.IsFull() {
			worst, _ := hits.WorstDist()
			if next, ok := candidates.Peek(); ok {
				if worst < next.dMin {
					break
				}
			} else {
				break
			}
		}
	}

	return toHits(hits.SortedEntries())
}

func absorbLeafDfs[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, leaf *Cluster[T, A], centerDist T, hits *SizedHeap[int, T]) {
	items := t.ItemsOf(leaf)
	if leaf.IsSingleton() {
		return // center already pushed when the cluster was enqueued
	}
	for i := 1; i < len(items); i++ {
		hits.Push(leaf.CenterIndex+i, t.metric(query, items[i].Value))
	}
}

// ParKnnDfs is the parallel counterpart of KnnDfs: each pop-till-leaf
// round computes all of a node's child distances concurrently.
func ParKnnDfs[Id any, I any, T DistanceValue, A any](rt *Runtime, t *Tree[Id, I, T, A], query I, k int) []Hit[T] {
	if rt == nil {
		rt = defaultRuntime
	}
	root := t.Root()
	if k >= root.Cardinality {
		return ParLinear(rt, t, query, k)
	}

	candidates := NewPriorityQueue(dfsCandidateLess[T, A])
	hits := NewSizedHeap[int, T](k)

	rootDist := t.metric(query, t.ItemAt(root.CenterIndex).Value)
	candidates.Push(dfsCandidate[T, A]{cluster: root, dMin: dMin(rootDist, root.Radius), dMax: dMax(rootDist, root.Radius), dCtr: rootDist})
	hits.Push(root.CenterIndex, rootDist)

	for candidates.Len() > 0 {
		for {
			top, ok := candidates.Peek()
			if !ok || top.cluster.IsLeaf() {
				break
			}
			node, _ := candidates.Pop()
			children := t.ChildrenOf(node.cluster)
			dists := make([]T, len(children))
			_ = rt.forEach(len(children), func(i int) error {
				dists[i] = t.metric(query, t.ItemAt(children[i].CenterIndex).Value)
				return nil
			})
			for i, child := range children {
				cd := dists[i]
				candidates.Push(dfsCandidate[T, A]{cluster: child, dMin: dMin(cd, child.Radius), dMax: dMax(cd, child.Radius), dCtr: cd})
				hits.Push(child.CenterIndex, cd)
			}
		}

		leaf, ok := candidates.Pop()
		if !ok {
			break
		}
		absorbLeafDfs(t, query, leaf.cluster, leaf.dCtr, hits)

		if hits.IsFull() {
			worst, _ := hits.WorstDist()
			if next, ok := candidates.Peek(); ok {
				if worst < next.dMin {
					break
				}
			} else {
				break
			}
		}
	}

	return toHits(hits.SortedEntries())
}
