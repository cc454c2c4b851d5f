package cakes

// Helper builders for turning arbitrary domain records into normalized,
// weighted N-dimensional feature vectors suitable for Euclidean-family
// metrics. Generalizes the fixed 2D/3D/4D builders of earlier KD-tree
// helpers to an arbitrary number of axes, since items here are N-dimensional
// by construction.

// AxisStats holds the min/max observed for a single axis.
type AxisStats struct {
	Min float64
	Max float64
}

// NormStats holds per-axis normalization statistics, one AxisStats per
// extracted feature.
type NormStats struct {
	Stats []AxisStats
}

func minMax(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mn, mx := xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return mn, mx
}

func scale01(v, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}

// ComputeNormStats computes per-axis min/max across items for the given
// feature extractors.
func ComputeNormStats[T any](items []T, features ...func(T) float64) NormStats {
	stats := make([]AxisStats, len(features))
	for axis, f := range features {
		vals := make([]float64, len(items))
		for i, it := range items {
			vals[i] = f(it)
		}
		mn, mx := minMax(vals)
		stats[axis] = AxisStats{Min: mn, Max: mx}
	}
	return NormStats{Stats: stats}
}

// BuildPoints constructs normalized-and-weighted N-dimensional vectors from
// items.
//
//   - id: stable identifier for each item.
//   - features: per-axis feature extractors (raw values).
//   - weights: per-axis weights applied after normalization. If nil, all
//     weights default to 1.
//   - invert: per-axis flags; if true, the axis is inverted (1-norm) so
//     higher raw values become lower cost. May be nil.
func BuildPoints[T any](items []T, id func(T) string, weights []float64, invert []bool, features ...func(T) float64) ([]Item[string, []float64], NormStats, error) {
	if len(items) == 0 {
		return nil, NormStats{}, nil
	}
	if len(features) == 0 {
		return nil, NormStats{}, newError(InvalidInput, "BuildPoints", ErrEmptyItems)
	}
	stats := ComputeNormStats(items, features...)
	dim := len(features)
	pts := make([]Item[string, []float64], len(items))
	for i, it := range items {
		coords := make([]float64, dim)
		for axis, f := range features {
			n := scale01(f(it), stats.Stats[axis].Min, stats.Stats[axis].Max)
			if invert != nil && axis < len(invert) && invert[axis] {
				n = 1 - n
			}
			if weights != nil && axis < len(weights) {
				n *= weights[axis]
			}
			coords[axis] = n
		}
		pts[i] = Item[string, []float64]{ID: id(it), Value: coords}
	}
	return pts, stats, nil
}

// BuildPointsWithStats is like BuildPoints but normalizes against
// previously computed stats (e.g. from a training split), instead of
// recomputing min/max from items.
func BuildPointsWithStats[T any](items []T, id func(T) string, weights []float64, invert []bool, stats NormStats, features ...func(T) float64) ([]Item[string, []float64], error) {
	if len(items) == 0 {
		return nil, nil
	}
	if len(features) != len(stats.Stats) {
		return nil, newError(InvalidInput, "BuildPointsWithStats", ErrDimMismatch)
	}
	dim := len(features)
	pts := make([]Item[string, []float64], len(items))
	for i, it := range items {
		coords := make([]float64, dim)
		for axis, f := range features {
			n := scale01(f(it), stats.Stats[axis].Min, stats.Stats[axis].Max)
			if invert != nil && axis < len(invert) && invert[axis] {
				n = 1 - n
			}
			if weights != nil && axis < len(weights) {
				n *= weights[axis]
			}
			coords[axis] = n
		}
		pts[i] = Item[string, []float64]{ID: id(it), Value: coords}
	}
	return pts, nil
}
