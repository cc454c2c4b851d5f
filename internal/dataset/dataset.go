// Package dataset supplies synthetic and file-backed sources of
// N-dimensional float64 vectors for the benchmark harness, standing in for
// the downstream "dataset readers" collaborator the core package never
// implements itself.
package dataset

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// Record is one labeled vector.
type Record struct {
	ID     string
	Vector []float64
}

// Uniform generates n points of dimension dim, each axis drawn uniformly
// from [lo, hi), grounded on original_source's generate_data shell command.
func Uniform(n, dim int, lo, hi float64, seed int64) []Record {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		v := make([]float64, dim)
		for j := range v {
			v[j] = lo + rng.Float64()*(hi-lo)
		}
		out[i] = Record{ID: strconv.Itoa(i), Vector: v}
	}
	return out
}

// Grid generates every integer lattice point in [0, side)^dim, in
// row-major order. The point count is side^dim, so callers should keep
// side and dim small.
func Grid(side, dim int) []Record {
	total := 1
	for i := 0; i < dim; i++ {
		total *= side
	}
	out := make([]Record, total)
	idx := make([]int, dim)
	for i := 0; i < total; i++ {
		v := make([]float64, dim)
		for j, c := range idx {
			v[j] = float64(c)
		}
		out[i] = Record{ID: strconv.Itoa(i), Vector: v}
		for axis := dim - 1; axis >= 0; axis-- {
			idx[axis]++
			if idx[axis] < side {
				break
			}
			idx[axis] = 0
		}
	}
	return out
}

// ReadDelimited reads one record per line from path: the first field is
// the ID, the remaining fields are the vector's coordinates, all separated
// by sep. Blank lines are skipped.
func ReadDelimited(path string, sep string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, err)
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		if len(fields) < 2 {
			return nil, fmt.Errorf("dataset: %s:%d: expected id + at least one coordinate", path, lineNo)
		}
		vec := make([]float64, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s:%d: field %d: %w", path, lineNo, i+1, err)
			}
			vec[i] = x
		}
		out = append(out, Record{ID: strings.TrimSpace(fields[0]), Vector: vec})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
	}
	return out, nil
}

// RandomQueries samples count vectors of dimension dim the same way
// Uniform does, for use as ad-hoc query points against a built tree.
func RandomQueries(count, dim int, lo, hi float64, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]float64, count)
	for i := range out {
		v := make([]float64, dim)
		for j := range v {
			v[j] = lo + rng.Float64()*(hi-lo)
		}
		out[i] = v
	}
	return out
}

// Dim returns the common dimensionality of records, or an error if they
// disagree.
func Dim(records []Record) (int, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("dataset: no records")
	}
	dim := len(records[0].Vector)
	for i, r := range records {
		if len(r.Vector) != dim {
			return 0, fmt.Errorf("dataset: record %d has dimension %d, want %d", i, len(r.Vector), dim)
		}
	}
	return dim, nil
}

// Bounds returns the per-axis min/max across records, assumed to share a
// common dimension (see Dim).
func Bounds(records []Record) ([]float64, []float64) {
	if len(records) == 0 {
		return nil, nil
	}
	dim := len(records[0].Vector)
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	for j := 0; j < dim; j++ {
		lo[j] = math.Inf(1)
		hi[j] = math.Inf(-1)
	}
	for _, r := range records {
		for j, x := range r.Vector {
			if x < lo[j] {
				lo[j] = x
			}
			if x > hi[j] {
				hi[j] = x
			}
		}
	}
	return lo, hi
}
