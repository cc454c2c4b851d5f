package cakes

// InitialPole describes how the left pole of a bipolar split is chosen:
// either an index already known to be a good extremal point, or a
// precomputed vector of distances from the slice's item 0 to every other
// item (in which case the farthest of those becomes the left pole).
type InitialPole[T DistanceValue] struct {
	hasIndex  bool
	index     int
	distances []T
}

// PoleAtIndex builds an InitialPole that designates items[i] as the left
// pole outright.
func PoleAtIndex[T DistanceValue](i int) InitialPole[T] {
	return InitialPole[T]{hasIndex: true, index: i}
}

// PoleFromDistances builds an InitialPole from precomputed distances of
// items[0] to every other item; the farthest becomes the left pole.
func PoleFromDistances[T DistanceValue](distances []T) InitialPole[T] {
	return InitialPole[T]{distances: distances}
}

// BipolarSplit is the result of partitioning a slice of items around two
// extremal poles (§4.2).
type BipolarSplit[Id any, I any, T DistanceValue] struct {
	// Left and Right are sub-slices of the original slice; the 0th item
	// of each is that side's pole.
	Left, Right []Item[Id, I]
	// Span is the distance between the two poles.
	Span T
	// LeftDistances[i] is the distance from the left pole to Left[i+1].
	// RightDistances[i] is the distance from the right pole to
	// Right[i+1].
	LeftDistances, RightDistances []T
}

// SplitBipolar reorders items in place into [left | right] around two
// poles and returns mutable views of each side, the span between the
// final poles, and per-item distances to their respective pole (§4.2).
func SplitBipolar[Id any, I any, T DistanceValue](items []Item[Id, I], metric Metric[I, T], pole InitialPole[T]) BipolarSplit[Id, I, T] {
	if len(items) == 2 {
		span := metric(items[0].Value, items[1].Value)
		return BipolarSplit[Id, I, T]{
			Left: items[0:1], Right: items[1:2], Span: span,
			LeftDistances: []T{}, RightDistances: []T{},
		}
	}

	leftDistances := resolveLeftPole(items, metric, pole)

	return finishBipolarSplit(items, metric, leftDistances)
}

// ParSplitBipolar is the parallel counterpart of SplitBipolar: the
// pole-to-item distance computations run across rt's worker pool.
func ParSplitBipolar[Id any, I any, T DistanceValue](rt *Runtime, items []Item[Id, I], metric Metric[I, T], pole InitialPole[T]) BipolarSplit[Id, I, T] {
	if rt == nil {
		rt = defaultRuntime
	}
	if len(items) == 2 {
		span := metric(items[0].Value, items[1].Value)
		return BipolarSplit[Id, I, T]{
			Left: items[0:1], Right: items[1:2], Span: span,
			LeftDistances: []T{}, RightDistances: []T{},
		}
	}

	leftIdx := leftPoleIndex(pole)
	items[0], items[leftIdx] = items[leftIdx], items[0]
	leftDistances := make([]T, len(items)-1)
	pivot := items[0].Value
	_ = rt.forEach(len(items)-1, func(i int) error {
		leftDistances[i] = metric(pivot, items[i+1].Value)
		return nil
	})

	rightPoleIdx := argmaxIndex(len(leftDistances), func(i int) T { return leftDistances[i] }) + 1
	span := leftDistances[rightPoleIdx-1]

	last := len(items) - 1
	items[rightPoleIdx], items[last] = items[last], items[rightPoleIdx]
	leftDistances[rightPoleIdx-1], leftDistances[last-1] = leftDistances[last-1], leftDistances[rightPoleIdx-1]

	rightPole := items[last].Value
	inner := items[1:last]
	pairs := make([][2]T, len(inner))
	_ = rt.forEach(len(inner), func(i int) error {
		pairs[i][0] = leftDistances[i]
		pairs[i][1] = metric(rightPole, inner[i].Value)
		return nil
	})

	return assembleSplit(items, inner, pairs, span)
}

// resolveLeftPole moves the chosen left pole to slot 0 and returns the
// distances from it to every remaining item.
func resolveLeftPole[Id any, I any, T DistanceValue](items []Item[Id, I], metric Metric[I, T], pole InitialPole[T]) []T {
	leftIdx := leftPoleIndex(pole)
	items[0], items[leftIdx] = items[leftIdx], items[0]
	leftDistances := make([]T, len(items)-1)
	for i := 1; i < len(items); i++ {
		leftDistances[i-1] = metric(items[0].Value, items[i].Value)
	}
	return leftDistances
}

// leftPoleIndex returns the slot of the left pole designated by pole: the
// given index, or the item farthest from item 0 by the hint distances.
func leftPoleIndex[T DistanceValue](pole InitialPole[T]) int {
	if pole.hasIndex {
		return pole.index
	}
	return argmaxIndex(len(pole.distances), func(i int) T { return pole.distances[i] }) + 1
}

func finishBipolarSplit[Id any, I any, T DistanceValue](items []Item[Id, I], metric Metric[I, T], leftDistances []T) BipolarSplit[Id, I, T] {
	rightPoleIdx := argmaxIndex(len(leftDistances), func(i int) T { return leftDistances[i] }) + 1
	span := leftDistances[rightPoleIdx-1]

	last := len(items) - 1
	items[rightPoleIdx], items[last] = items[last], items[rightPoleIdx]
	leftDistances[rightPoleIdx-1], leftDistances[last-1] = leftDistances[last-1], leftDistances[rightPoleIdx-1]

	rightPole := items[last].Value
	inner := items[1:last]
	pairs := make([][2]T, len(inner))
	for i := range inner {
		pairs[i][0] = leftDistances[i]
		pairs[i][1] = metric(rightPole, inner[i].Value)
	}

	return assembleSplit(items, inner, pairs, span)
}

// assembleSplit reorders inner in place by (l,r) distance pairs, splits
// items into left/right partitions, and moves each side's pole to slot 0.
func assembleSplit[Id any, I any, T DistanceValue](items []Item[Id, I], inner []Item[Id, I], pairs [][2]T, span T) BipolarSplit[Id, I, T] {
	mid := reorderItemsInPlace(inner, pairs) + 1

	leftItems := items[:mid]
	rightItems := items[mid:]

	leftDist := make([]T, mid-1)
	for i, p := range pairs[:mid-1] {
		leftDist[i] = p[0]
	}

	rawRight := make([]T, len(pairs)-(mid-1))
	for i, p := range pairs[mid-1:] {
		rawRight[i] = p[1]
	}
	rightDist := rotateLeft1(rawRight)

	rightLast := len(rightItems) - 1
	rightItems[0], rightItems[rightLast] = rightItems[rightLast], rightItems[0]

	return BipolarSplit[Id, I, T]{
		Left: leftItems, Right: rightItems, Span: span,
		LeftDistances: leftDist, RightDistances: rightDist,
	}
}

// reorderItemsInPlace reorders items (and distances in lockstep) so that
// items with l<=r (ties go left) end up on the left side and items with
// l>r end up on the right side, returning mid, the index of the first
// item belonging to the right side.
func reorderItemsInPlace[Id any, I any, T DistanceValue](items []Item[Id, I], distances [][2]T) int {
	left := 0
	right := len(distances) - 1
	for left < right {
		for left < len(distances) && distances[left][0] <= distances[left][1] {
			left++
		}
		for right > 0 && distances[right][0] > distances[right][1] {
			right--
		}
		if left >= right {
			break
		}
		items[left], items[right] = items[right], items[left]
		distances[left], distances[right] = distances[right], distances[left]
		left++
		right--
	}
	for left < len(distances) && distances[left][0] <= distances[left][1] {
		left++
	}
	return left
}

// rotateLeft1 returns a copy of s with its first element moved to the
// end, preserving the order of the rest. assembleSplit uses it because the
// final pole swap moves the first right-side item to the last slot.
func rotateLeft1[T any](s []T) []T {
	if len(s) == 0 {
		return s
	}
	out := make([]T, len(s))
	copy(out, s[1:])
	out[len(s)-1] = s[0]
	return out
}
