package cakes

// Item is an opaque value of type I carried alongside an identifier of
// type Id. Items are owned by the Tree and reordered in place during build.
type Item[Id any, I any] struct {
	ID    Id
	Value I
}

// Cluster is a node in the tree: a ball with a center, a radius, a local
// fractal dimension estimate, and either no children (a leaf) or an
// ordered list of child center indices plus the span of the split that
// produced them.
type Cluster[T DistanceValue, A any] struct {
	// Depth is 0 at the root, parent depth + 1 otherwise.
	Depth int
	// CenterIndex indexes into the tree's items array; the cluster owns
	// the contiguous range [CenterIndex, CenterIndex+Cardinality).
	CenterIndex int
	// Cardinality is the number of items owned by this cluster,
	// including the center.
	Cardinality int
	// Radius is the maximum distance from the center to any item in the
	// cluster's range.
	Radius T
	// LFD is the local fractal dimension estimate (see lfdEstimate).
	LFD float64
	// ChildCenterIndices holds the center indices of this cluster's
	// children, sorted ascending. Nil for a leaf.
	ChildCenterIndices []int
	// Span is the distance between the two poles of the split that
	// produced ChildCenterIndices. Only meaningful when non-leaf.
	Span T
	// HasParent is false only for the root.
	HasParent bool
	// ParentCenterIndex is meaningful only when HasParent is true.
	ParentCenterIndex int
	// Annotation is attached once at build time by the Tree's annotator
	// callback.
	Annotation A
}

// IsLeaf reports whether the cluster has no children.
func (c *Cluster[T, A]) IsLeaf() bool { return len(c.ChildCenterIndices) == 0 }

// IsSingleton reports whether the cluster owns exactly one item.
func (c *Cluster[T, A]) IsSingleton() bool { return c.Cardinality == 1 }
