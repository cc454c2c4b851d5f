//go:build !gonum

package cakes

import "math"

// Euclidean is the L2 metric over []float64 vectors.
func Euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Manhattan is the L1 metric over []float64 vectors.
func Manhattan(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// Chebyshev is the L-infinity (max) metric over []float64 vectors.
func Chebyshev(a, b []float64) float64 {
	var max float64
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

// Cosine is 1 - cosine similarity, clamped to [0,2]. Distance is 0 if both
// vectors are zero, 1 if exactly one is zero.
func Cosine(a, b []float64) float64 {
	var dot, na2, nb2 float64
	for i := range a {
		ai, bi := a[i], b[i]
		dot += ai * bi
		na2 += ai * ai
		nb2 += bi * bi
	}
	if na2 == 0 && nb2 == 0 {
		return 0
	}
	if na2 == 0 || nb2 == 0 {
		return 1
	}
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

// WeightedCosine returns a metric computing 1 - weighted cosine similarity,
// where weights scale each axis in both the dot product and the norms. It
// falls back to Cosine when weights is empty or mismatched in length.
func WeightedCosine(weights []float64) func(a, b []float64) float64 {
	return func(a, b []float64) float64 {
		if len(weights) == 0 || len(weights) != len(a) || len(a) != len(b) {
			return Cosine(a, b)
		}
		var dot, na2, nb2 float64
		for i := range a {
			wi, ai, bi := weights[i], a[i], b[i]
			v := wi * ai
			dot += v * bi
			na2 += v * ai
			nb2 += (wi * bi) * bi
		}
		if na2 == 0 && nb2 == 0 {
			return 0
		}
		if na2 == 0 || nb2 == 0 {
			return 1
		}
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
