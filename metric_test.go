package cakes

import (
	"math"
	"testing"
)

func TestEuclideanManhattanChebyshev(t *testing.T) {
	a := []float64{0, 0, 0}
	b := []float64{3, 4, 0}
	if d := Euclidean(a, b); math.Abs(d-5) > 1e-9 {
		t.Fatalf("Euclidean = %v, want 5", d)
	}
	if d := Manhattan(a, b); d != 7 {
		t.Fatalf("Manhattan = %v, want 7", d)
	}
	if d := Chebyshev(a, b); d != 4 {
		t.Fatalf("Chebyshev = %v, want 4", d)
	}
}

func TestCosineIdenticalAndOrthogonal(t *testing.T) {
	if d := Cosine([]float64{1, 0}, []float64{1, 0}); math.Abs(d) > 1e-9 {
		t.Fatalf("Cosine of identical vectors = %v, want 0", d)
	}
	if d := Cosine([]float64{1, 0}, []float64{0, 1}); math.Abs(d-1) > 1e-9 {
		t.Fatalf("Cosine of orthogonal vectors = %v, want 1", d)
	}
	if d := Cosine([]float64{0, 0}, []float64{0, 0}); d != 0 {
		t.Fatalf("Cosine of two zero vectors = %v, want 0", d)
	}
	if d := Cosine([]float64{0, 0}, []float64{1, 0}); d != 1 {
		t.Fatalf("Cosine with one zero vector = %v, want 1", d)
	}
}

func TestWeightedCosineFallsBackOnMismatch(t *testing.T) {
	wc := WeightedCosine([]float64{1, 1})
	a := []float64{1, 0, 0}
	b := []float64{0, 1, 0}
	if got, want := wc(a, b), Cosine(a, b); got != want {
		t.Fatalf("WeightedCosine with mismatched weights = %v, want fallback Cosine = %v", got, want)
	}
}

func TestWeightedCosineWeightsDominantAxis(t *testing.T) {
	wc := WeightedCosine([]float64{10, 1})
	// Heavily weighting axis 0 should pull the two vectors' similarity
	// toward how aligned they are on that axis.
	d := wc([]float64{1, 0}, []float64{1, 1})
	if d < 0 || d > 2 {
		t.Fatalf("WeightedCosine out of range: %v", d)
	}
	if plain := Cosine([]float64{1, 0}, []float64{1, 1}); d >= plain {
		t.Fatalf("WeightedCosine = %v, want below unweighted Cosine = %v", d, plain)
	}
}

func TestBuildOverFloatVectorsWithEuclidean(t *testing.T) {
	items := []Item[int, []float64]{
		{ID: 0, Value: []float64{0, 0}},
		{ID: 1, Value: []float64{3, 4}},
		{ID: 2, Value: []float64{6, 8}},
	}
	tr, err := Build(items, Euclidean, DefaultStrategy[float64, struct{}](), func(*Cluster[float64, struct{}]) struct{} { return struct{}{} })
	if err != nil {
		t.Fatalf("Build over []float64 items failed: %v", err)
	}
	if tr.Root().Cardinality != 3 {
		t.Fatalf("root.Cardinality = %d, want 3", tr.Root().Cardinality)
	}
}
