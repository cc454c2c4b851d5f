package cakes

// RnnChess answers ranged queries ("every item within radius of query") by
// descending the tree and classifying clusters as subsumed (fully inside
// the query ball, no need to look further), straddling (overlapping but
// not fully inside), or pruned (no overlap) before a final item-level
// sieve (§4.6.2).
func RnnChess[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, radius T) []Hit[T] {
	centers, subsumed, straddlers := treeSearch(t, t.Root(), query, radius)
	return sieveRnnChess(t, query, radius, centers, subsumed, straddlers)
}

// ParRnnChess is the parallel counterpart of RnnChess.
func ParRnnChess[Id any, I any, T DistanceValue, A any](rt *Runtime, t *Tree[Id, I, T, A], query I, radius T) []Hit[T] {
	if rt == nil {
		rt = defaultRuntime
	}
	centers, subsumed, straddlers := parTreeSearch(rt, t, t.Root(), query, radius)
	return parSieveRnnChess(rt, t, query, radius, centers, subsumed, straddlers)
}

// treeSearch descends from ball, classifying every visited cluster as a
// confirmed center, subsumed, or straddling, and pruning subtrees with no
// overlap against the query ball (§4.6.2).
func treeSearch[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], ball *Cluster[T, A], query I, radius T) (centers []Hit[T], subsumed, straddlers []*Cluster[T, A]) {
	centerDist := t.metric(query, t.ItemAt(ball.CenterIndex).Value)

	if centerDist > ball.Radius+radius {
		return nil, nil, nil
	}
	if radius > centerDist+ball.Radius {
		return []Hit[T]{{ItemIndex: ball.CenterIndex, Distance: centerDist}}, []*Cluster[T, A]{ball}, nil
	}

	if centerDist <= radius {
		centers = append(centers, Hit[T]{ItemIndex: ball.CenterIndex, Distance: centerDist})
	}

	if ball.IsLeaf() {
		return centers, nil, []*Cluster[T, A]{ball}
	}

	for _, child := range t.ChildrenOf(ball) {
		cc, cs, ct := treeSearch(t, child, query, radius)
		centers = append(centers, cc...)
		subsumed = append(subsumed, cs...)
		straddlers = append(straddlers, ct...)
	}
	return centers, subsumed, straddlers
}

// parTreeSearch is the parallel counterpart of treeSearch: siblings
// recurse concurrently, mirroring rayon::join in the original engine.
func parTreeSearch[Id any, I any, T DistanceValue, A any](rt *Runtime, t *Tree[Id, I, T, A], ball *Cluster[T, A], query I, radius T) (centers []Hit[T], subsumed, straddlers []*Cluster[T, A]) {
	centerDist := t.metric(query, t.ItemAt(ball.CenterIndex).Value)

	if centerDist > ball.Radius+radius {
		return nil, nil, nil
	}
	if radius > centerDist+ball.Radius {
		return []Hit[T]{{ItemIndex: ball.CenterIndex, Distance: centerDist}}, []*Cluster[T, A]{ball}, nil
	}

	if centerDist <= radius {
		centers = append(centers, Hit[T]{ItemIndex: ball.CenterIndex, Distance: centerDist})
	}

	if ball.IsLeaf() {
		return centers, nil, []*Cluster[T, A]{ball}
	}

	children := t.ChildrenOf(ball)
	type result struct {
		centers             []Hit[T]
		subsumed, straddlers []*Cluster[T, A]
	}
	results := make([]result, len(children))
	_ = rt.forEach(len(children), func(i int) error {
		cc, cs, ct := parTreeSearch(rt, t, children[i], query, radius)
		results[i] = result{cc, cs, ct}
		return nil
	})
	for _, r := range results {
		centers = append(centers, r.centers...)
		subsumed = append(subsumed, r.subsumed...)
		straddlers = append(straddlers, r.straddlers...)
	}
	return centers, subsumed, straddlers
}

// sieveRnnChess turns (centers, subsumed, straddlers) into the final hit
// list: every item from a subsumed cluster is included outright, while
// straddler items are re-checked against radius (§4.6.2).
func sieveRnnChess[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, radius T, centers []Hit[T], subsumed, straddlers []*Cluster[T, A]) []Hit[T] {
	hits := append([]Hit[T]{}, centers...)

	for _, c := range subsumed {
		items := t.ItemsOf(c)
		if c.IsSingleton() {
			continue // its center is already in hits via `centers`
		}
		centerDist := t.metric(query, items[0].Value)
		for i := 1; i < len(items); i++ {
			hits = append(hits, Hit[T]{ItemIndex: c.CenterIndex + i, Distance: t.metric(query, items[i].Value)})
		}
		_ = centerDist
	}

	// A straddler's center was already checked by treeSearch and, if within
	// radius, is in hits via `centers`.
	for _, c := range straddlers {
		items := t.ItemsOf(c)
		for i := 1; i < len(items); i++ {
			d := t.metric(query, items[i].Value)
			if d <= radius {
				hits = append(hits, Hit[T]{ItemIndex: c.CenterIndex + i, Distance: d})
			}
		}
	}

	return hits
}

// parSieveRnnChess is the parallel counterpart of sieveRnnChess.
func parSieveRnnChess[Id any, I any, T DistanceValue, A any](rt *Runtime, t *Tree[Id, I, T, A], query I, radius T, centers []Hit[T], subsumed, straddlers []*Cluster[T, A]) []Hit[T] {
	hits := append([]Hit[T]{}, centers...)

	subsumedHits := make([][]Hit[T], len(subsumed))
	_ = rt.forEach(len(subsumed), func(i int) error {
		c := subsumed[i]
		if c.IsSingleton() {
			return nil
		}
		items := t.ItemsOf(c)
		out := make([]Hit[T], 0, len(items)-1)
		for j := 1; j < len(items); j++ {
			out = append(out, Hit[T]{ItemIndex: c.CenterIndex + j, Distance: t.metric(query, items[j].Value)})
		}
		subsumedHits[i] = out
		return nil
	})
	for _, h := range subsumedHits {
		hits = append(hits, h...)
	}

	straddlerHits := make([][]Hit[T], len(straddlers))
	_ = rt.forEach(len(straddlers), func(i int) error {
		c := straddlers[i]
		items := t.ItemsOf(c)
		var out []Hit[T]
		for j := 1; j < len(items); j++ {
			d := t.metric(query, items[j].Value)
			if d <= radius {
				out = append(out, Hit[T]{ItemIndex: c.CenterIndex + j, Distance: d})
			}
		}
		straddlerHits[i] = out
		return nil
	})
	for _, h := range straddlerHits {
		hits = append(hits, h...)
	}

	return hits
}
