package cakes

import "sort"

// Annotator computes a cluster's annotation once, at build time, after the
// cluster's geometry (depth, center, radius, LFD, children) is final.
type Annotator[T DistanceValue, A any] func(*Cluster[T, A]) A

// Tree is a built hierarchical index over items: a single contiguous,
// pre-order-reordered array plus a map from center index to the Cluster
// rooted there (§4.5).
type Tree[Id any, I any, T DistanceValue, A any] struct {
	items    []Item[Id, I]
	clusters map[int]*Cluster[T, A]
	metric   Metric[I, T]
	root     int
}

type frontierEntry[Id any, I any, T DistanceValue, A any] struct {
	cluster *Cluster[T, A]
	splits  []localSplit[Id, I]
}

// Build constructs a Tree over items using strategy to decide how each
// cluster splits and annotate to compute each cluster's Annotation. Build
// takes ownership of items and reorders them in place. It fails with
// InvalidInput iff items is empty.
func Build[Id any, I any, T DistanceValue, A any](items []Item[Id, I], metric Metric[I, T], strategy PartitionStrategy[T, A], annotate Annotator[T, A]) (*Tree[Id, I, T, A], error) {
	if len(items) == 0 {
		return nil, newError(InvalidInput, "Build", ErrEmptyItems)
	}

	root, rootSplits := newCluster(items, metric, strategy)
	tr := &Tree[Id, I, T, A]{items: items, clusters: make(map[int]*Cluster[T, A]), metric: metric}

	frontier := []frontierEntry[Id, I, T, A]{{cluster: root, splits: rootSplits}}
	for len(frontier) > 0 {
		entry := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		parent := entry.cluster

		for _, sp := range entry.splits {
			// Splits are already shifted to absolute positions in t.items.
			offset := sp.LocalCenterIndex
			child, childSplits := newCluster(sp.Items, metric, strategy)
			child.Depth = parent.Depth + 1
			child.CenterIndex += offset
			for i := range child.ChildCenterIndices {
				child.ChildCenterIndices[i] += offset
			}
			for i := range childSplits {
				childSplits[i].LocalCenterIndex += offset
			}
			child.HasParent = true
			child.ParentCenterIndex = parent.CenterIndex
			frontier = append(frontier, frontierEntry[Id, I, T, A]{cluster: child, splits: childSplits})
		}

		parent.Annotation = annotate(parent)
		tr.clusters[parent.CenterIndex] = parent
	}

	tr.root = root.CenterIndex
	return tr, nil
}

// ParBuild is the parallel counterpart of Build: the children of each
// cluster popped from the frontier stack are constructed concurrently
// across rt's worker pool, since sibling sub-slices never alias.
func ParBuild[Id any, I any, T DistanceValue, A any](rt *Runtime, items []Item[Id, I], metric Metric[I, T], strategy PartitionStrategy[T, A], annotate Annotator[T, A]) (*Tree[Id, I, T, A], error) {
	if len(items) == 0 {
		return nil, newError(InvalidInput, "ParBuild", ErrEmptyItems)
	}
	if rt == nil {
		rt = defaultRuntime
	}

	root, rootSplits := parNewCluster(rt, items, metric, strategy)
	tr := &Tree[Id, I, T, A]{items: items, clusters: make(map[int]*Cluster[T, A]), metric: metric}

	frontier := []frontierEntry[Id, I, T, A]{{cluster: root, splits: rootSplits}}
	for len(frontier) > 0 {
		entry := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		parent := entry.cluster

		children := make([]*Cluster[T, A], len(entry.splits))
		childSplitsAll := make([][]localSplit[Id, I], len(entry.splits))
		_ = rt.forEach(len(entry.splits), func(i int) error {
			sp := entry.splits[i]
			offset := sp.LocalCenterIndex
			child, childSplits := parNewCluster(rt, sp.Items, metric, strategy)
			child.Depth = parent.Depth + 1
			child.CenterIndex += offset
			for j := range child.ChildCenterIndices {
				child.ChildCenterIndices[j] += offset
			}
			for j := range childSplits {
				childSplits[j].LocalCenterIndex += offset
			}
			child.HasParent = true
			child.ParentCenterIndex = parent.CenterIndex
			children[i] = child
			childSplitsAll[i] = childSplits
			return nil
		})

		for i, child := range children {
			frontier = append(frontier, frontierEntry[Id, I, T, A]{cluster: child, splits: childSplitsAll[i]})
		}

		parent.Annotation = annotate(parent)
		tr.clusters[parent.CenterIndex] = parent
	}

	tr.root = root.CenterIndex
	return tr, nil
}

// Root returns the root cluster.
func (t *Tree[Id, I, T, A]) Root() *Cluster[T, A] { return t.clusters[t.root] }

// Len reports the total number of items held by the tree.
func (t *Tree[Id, I, T, A]) Len() int { return len(t.items) }

// Metric returns the distance function the tree was built with.
func (t *Tree[Id, I, T, A]) Metric() Metric[I, T] { return t.metric }

// ClusterAt looks up the cluster centered at centerIndex.
func (t *Tree[Id, I, T, A]) ClusterAt(centerIndex int) (*Cluster[T, A], error) {
	c, ok := t.clusters[centerIndex]
	if !ok {
		return nil, newError(InvalidInput, "ClusterAt", ErrUnknownCenter)
	}
	return c, nil
}

// ItemAt returns the item stored at the given position in the tree's
// reordered item array.
func (t *Tree[Id, I, T, A]) ItemAt(index int) Item[Id, I] { return t.items[index] }

// ItemsOf returns the contiguous slice of items owned by c.
func (t *Tree[Id, I, T, A]) ItemsOf(c *Cluster[T, A]) []Item[Id, I] {
	return t.items[c.CenterIndex : c.CenterIndex+c.Cardinality]
}

// ChildrenOf returns c's children in ascending center-index order.
func (t *Tree[Id, I, T, A]) ChildrenOf(c *Cluster[T, A]) []*Cluster[T, A] {
	out := make([]*Cluster[T, A], len(c.ChildCenterIndices))
	for i, ci := range c.ChildCenterIndices {
		out[i] = t.clusters[ci]
	}
	return out
}

// SubtreePreorder visits every cluster in the subtree rooted at c in
// pre-order (parent before children, children in ascending center order).
func (t *Tree[Id, I, T, A]) SubtreePreorder(c *Cluster[T, A]) []*Cluster[T, A] {
	var out []*Cluster[T, A]
	var walk func(*Cluster[T, A])
	walk = func(n *Cluster[T, A]) {
		out = append(out, n)
		for _, ci := range n.ChildCenterIndices {
			walk(t.clusters[ci])
		}
	}
	walk(c)
	return out
}

// SortedClusters returns every cluster in the tree sorted ascending by
// center index.
func (t *Tree[Id, I, T, A]) SortedClusters() []*Cluster[T, A] {
	out := make([]*Cluster[T, A], 0, len(t.clusters))
	for _, c := range t.clusters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CenterIndex < out[j].CenterIndex })
	return out
}

// ApplyToItems calls fn for every item in the tree, in their stored
// (reordered) order.
func (t *Tree[Id, I, T, A]) ApplyToItems(fn func(Item[Id, I])) {
	for _, it := range t.items {
		fn(it)
	}
}

// ParApplyToItems is the parallel counterpart of ApplyToItems.
func (t *Tree[Id, I, T, A]) ParApplyToItems(rt *Runtime, fn func(Item[Id, I])) {
	if rt == nil {
		rt = defaultRuntime
	}
	_ = rt.forEach(len(t.items), func(i int) error {
		fn(t.items[i])
		return nil
	})
}
