//go:build gonum

package cakes

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Euclidean is the L2 metric over []float64 vectors, computed with
// gonum/floats.
func Euclidean(a, b []float64) float64 {
	diff := append([]float64(nil), a...)
	floats.Sub(diff, b)
	return math.Sqrt(floats.Dot(diff, diff))
}

// Manhattan is the L1 metric over []float64 vectors, computed with
// gonum/floats.
func Manhattan(a, b []float64) float64 {
	diff := append([]float64(nil), a...)
	floats.Sub(diff, b)
	var sum float64
	for _, v := range diff {
		sum += math.Abs(v)
	}
	return sum
}

// Chebyshev is the L-infinity (max) metric over []float64 vectors, computed
// with gonum/floats.
func Chebyshev(a, b []float64) float64 {
	diff := append([]float64(nil), a...)
	floats.Sub(diff, b)
	var max float64
	for _, v := range diff {
		if av := math.Abs(v); av > max {
			max = av
		}
	}
	return max
}

// Cosine is 1 - cosine similarity, clamped to [0,2], computed with
// gonum/floats.
func Cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 && nb == 0 {
		return 0
	}
	if na == 0 || nb == 0 {
		return 1
	}
	cos := floats.Dot(a, b) / (na * nb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	d := 1 - cos
	if d < 0 {
		return 0
	}
	if d > 2 {
		return 2
	}
	return d
}

// WeightedCosine returns a metric computing 1 - weighted cosine similarity,
// where weights scale each axis in both the dot product and the norms. It
// falls back to Cosine when weights is empty or mismatched in length.
func WeightedCosine(weights []float64) func(a, b []float64) float64 {
	return func(a, b []float64) float64 {
		if len(weights) == 0 || len(weights) != len(a) || len(a) != len(b) {
			return Cosine(a, b)
		}
		wa := make([]float64, len(a))
		wb := make([]float64, len(b))
		for i := range a {
			wa[i] = weights[i] * a[i]
			wb[i] = weights[i] * b[i]
		}
		na2 := floats.Dot(wa, a)
		nb2 := floats.Dot(wb, b)
		if na2 == 0 && nb2 == 0 {
			return 0
		}
		if na2 == 0 || nb2 == 0 {
			return 1
		}
		dot := floats.Dot(wa, b)
		den := math.Sqrt(na2) * math.Sqrt(nb2)
		cos := dot / den
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		d := 1 - cos
		if d < 0 {
			return 0
		}
		if d > 2 {
			return 2
		}
		return d
	}
}
