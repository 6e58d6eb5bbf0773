package service

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// cosine returns the normalized dot product of a and b. A zero vector has
// similarity 0 with everything.
func cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("embedding dimensions differ: %d vs %d", len(a), len(b))
	}
	if err := checkFinite(0, a); err != nil {
		return 0, err
	}
	if err := checkFinite(1, b); err != nil {
		return 0, err
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	v := floats.Dot(a, b) / (na * nb)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("similarity is not finite")
	}
	return v, nil
}

// checkFinite rejects NaN and ±Inf components, which would otherwise slip
// through comparisons and clamping.
func checkFinite(i int, e []float64) error {
	for j, v := range e {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("embedding %d component %d is not finite", i, j)
		}
	}
	return nil
}

// maxPairSimilarity L2-normalizes the embeddings, forms the similarity
// matrix X·Xᵀ and returns the largest entry strictly above the diagonal
// together with its indices.
func maxPairSimilarity(embs [][]float64) (float64, [2]int, error) {
	n := len(embs)
	if n < 2 {
		return 0, [2]int{}, fmt.Errorf("need at least 2 embeddings, got %d", n)
	}
	dim := len(embs[0])
	if dim == 0 {
		return 0, [2]int{}, fmt.Errorf("empty embedding")
	}
	x := mat.NewDense(n, dim, nil)
	row := make([]float64, dim)
	for i, e := range embs {
		if len(e) != dim {
			return 0, [2]int{}, fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(e), dim)
		}
		if err := checkFinite(i, e); err != nil {
			return 0, [2]int{}, err
		}
		copy(row, e)
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		x.SetRow(i, row)
	}
	var sim mat.Dense
	sim.Mul(x, x.T())

	best, pair := math.Inf(-1), [2]int{0, 1}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if v := sim.At(i, j); v > best {
				best, pair = v, [2]int{i, j}
			}
		}
	}
	if math.IsNaN(best) || math.IsInf(best, 0) {
		return 0, [2]int{}, fmt.Errorf("similarity is not finite")
	}
	return clamp(best, -1, 1), pair, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
