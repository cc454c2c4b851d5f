package cakes

import "sort"

// Hit is one result of a search: the index of an item in the tree's
// reordered array, paired with its distance to the query.
type Hit[T DistanceValue] struct {
	ItemIndex int
	Distance  T
}

// dMin is the lower bound on the distance from q to any item owned by a
// cluster centered at dCenter with the given radius (§4.6).
func dMin[T DistanceValue](dCenter, radius T) T {
	lo := dCenter - radius
	if lo < Zero[T]() {
		return Zero[T]()
	}
	return lo
}

// dMax is the upper bound on the distance from q to any item owned by a
// cluster centered at dCenter with the given radius (§4.6).
func dMax[T DistanceValue](dCenter, radius T) T {
	return dCenter + radius
}

// Linear scans every item and returns the k nearest to query, sorted
// ascending by distance. k <= 0 returns every item (§4.6.1).
func Linear[Id any, I any, T DistanceValue, A any](t *Tree[Id, I, T, A], query I, k int) []Hit[T] {
	hits := make([]Hit[T], len(t.items))
	for i, it := range t.items {
		hits[i] = Hit[T]{ItemIndex: i, Distance: t.metric(query, it.Value)}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

// ParLinear is the parallel counterpart of Linear.
func ParLinear[Id any, I any, T DistanceValue, A any](rt *Runtime, t *Tree[Id, I, T, A], query I, k int) []Hit[T] {
	if rt == nil {
		rt = defaultRuntime
	}
	hits := make([]Hit[T], len(t.items))
	_ = rt.forEach(len(t.items), func(i int) error {
		hits[i] = Hit[T]{ItemIndex: i, Distance: t.metric(query, t.items[i].Value)}
		return nil
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

// BatchSearch runs search for every query in queries and returns one
// result slice per query, in order.
func BatchSearch[I any, T DistanceValue](queries []I, search func(I) []Hit[T]) [][]Hit[T] {
	out := make([][]Hit[T], len(queries))
	for i, q := range queries {
		out[i] = search(q)
	}
	return out
}

// ParBatchSearch runs search concurrently across rt's worker pool, one
// call per query; a query for which no worker is free runs on the
// calling goroutine.
func ParBatchSearch[I any, T DistanceValue](rt *Runtime, queries []I, search func(I) []Hit[T]) [][]Hit[T] {
	if rt == nil {
		rt = defaultRuntime
	}
	out := make([][]Hit[T], len(queries))
	_ = rt.forEach(len(queries), func(i int) error {
		out[i] = search(queries[i])
		return nil
	})
	return out
}
