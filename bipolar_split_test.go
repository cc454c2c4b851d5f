package cakes

import "testing"

func manhattan2D(a, b [2]int) int {
	d := func(x, y int) int {
		if x > y {
			return x - y
		}
		return y - x
	}
	return d(a[0], b[0]) + d(a[1], b[1])
}

func intItems(coords ...[2]int) []Item[int, [2]int] {
	items := make([]Item[int, [2]int], len(coords))
	for i, c := range coords {
		items[i] = Item[int, [2]int]{ID: i, Value: c}
	}
	return items
}

// TestSplitBipolarDegeneratePair exercises the len(items)==2 special case.
func TestSplitBipolarDegeneratePair(t *testing.T) {
	items := intItems([2]int{0, 0}, [2]int{3, 4})
	bs := SplitBipolar(items, manhattan2D, PoleAtIndex[int](0))
	if bs.Span != 7 {
		t.Fatalf("Span = %d, want 7", bs.Span)
	}
	if len(bs.Left) != 1 || len(bs.Right) != 1 {
		t.Fatalf("Left/Right lengths = %d/%d, want 1/1", len(bs.Left), len(bs.Right))
	}
}

// TestSplitBipolarInvariants checks the bipolar-split invariants:
// every non-pole left item is closer to the left pole than the right, the
// union of partitions equals the input, and span is the max distance
// observed anywhere in the split.
func TestSplitBipolarInvariants(t *testing.T) {
	items := intItems(
		[2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}, [2]int{10, 0}, [2]int{11, 0}, [2]int{20, 0},
	)
	original := make(map[int]bool, len(items))
	for _, it := range items {
		original[it.ID] = true
	}

	bs := SplitBipolar(items, manhattan2D, PoleAtIndex[int](0))

	seen := make(map[int]bool, len(items))
	for _, it := range bs.Left {
		seen[it.ID] = true
	}
	for _, it := range bs.Right {
		seen[it.ID] = true
	}
	if len(seen) != len(original) {
		t.Fatalf("partition union has %d distinct items, want %d", len(seen), len(original))
	}
	for id := range original {
		if !seen[id] {
			t.Fatalf("item %d missing from partition", id)
		}
	}

	leftPole := bs.Left[0].Value
	rightPole := bs.Right[0].Value
	for i := 1; i < len(bs.Left); i++ {
		dl := manhattan2D(leftPole, bs.Left[i].Value)
		dr := manhattan2D(rightPole, bs.Left[i].Value)
		if dl > dr {
			t.Fatalf("left item %v is closer to right pole (%d < %d)", bs.Left[i].Value, dr, dl)
		}
	}
	for i := 1; i < len(bs.Right); i++ {
		dl := manhattan2D(leftPole, bs.Right[i].Value)
		dr := manhattan2D(rightPole, bs.Right[i].Value)
		if dr > dl {
			t.Fatalf("right item %v is closer to left pole (%d < %d)", bs.Right[i].Value, dl, dr)
		}
	}

	maxObserved := bs.Span
	for _, d := range bs.LeftDistances {
		if d > maxObserved {
			maxObserved = d
		}
	}
	for _, d := range bs.RightDistances {
		if d > maxObserved {
			maxObserved = d
		}
	}
	if maxObserved != bs.Span {
		t.Fatalf("span %d is not the maximum distance observed (%d)", bs.Span, maxObserved)
	}
}

// TestParSplitBipolarMatchesSequential checks that the parallel split
// produces the same partition (as sets) and span as the sequential one.
func TestParSplitBipolarMatchesSequential(t *testing.T) {
	coords := [][2]int{{0, 0}, {1, 0}, {2, 0}, {10, 0}, {11, 0}, {20, 0}}

	seqItems := intItems(coords...)
	seq := SplitBipolar(seqItems, manhattan2D, PoleAtIndex[int](0))

	parItems := intItems(coords...)
	rt := NewRuntime(4)
	par := ParSplitBipolar(rt, parItems, manhattan2D, PoleAtIndex[int](0))

	if seq.Span != par.Span {
		t.Fatalf("seq.Span = %d, par.Span = %d", seq.Span, par.Span)
	}
	if len(seq.Left) != len(par.Left) || len(seq.Right) != len(par.Right) {
		t.Fatalf("partition sizes differ: seq %d/%d, par %d/%d", len(seq.Left), len(seq.Right), len(par.Left), len(par.Right))
	}

	seqIDs := make(map[int]bool)
	for _, it := range seq.Left {
		seqIDs[it.ID] = true
	}
	for _, it := range seq.Right {
		seqIDs[it.ID] = true
	}
	parIDs := make(map[int]bool)
	for _, it := range par.Left {
		parIDs[it.ID] = true
	}
	for _, it := range par.Right {
		parIDs[it.ID] = true
	}
	for id := range seqIDs {
		if !parIDs[id] {
			t.Fatalf("item %d present sequentially but missing in parallel split", id)
		}
	}

	parLeft := make(map[int]bool)
	for _, it := range par.Left {
		parLeft[it.ID] = true
	}
	for _, it := range seq.Left {
		if !parLeft[it.ID] {
			t.Fatalf("item %d is on the left sequentially but not in the parallel split", it.ID)
		}
	}
}
