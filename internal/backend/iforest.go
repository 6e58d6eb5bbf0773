package backend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Defaults for ForestOptions fields left at zero.
const (
	defaultTrees      = 100
	defaultSampleSize = 256
	defaultThreshold  = 0.5
)

// eulerGamma is used in the harmonic number approximation.
const eulerGamma = 0.5772156649015329

// ForestOptions tunes isolation forest fitting.
type ForestOptions struct {
	Trees      int
	SampleSize int
	// Threshold on the anomaly score above which a point is an outlier.
	// 0.5 matches the "auto" contamination of the reference algorithm.
	Threshold float64
	Seed      uint64
}

// IsolationForest is an immutable, fitted isolation forest. Scoring only reads
// the trees, so it is safe for concurrent use.
type IsolationForest struct {
	trees     []*itreeNode
	dims      int
	psi       int
	threshold float64
}

type itreeNode struct {
	feature int
	split   float64
	left    *itreeNode
	right   *itreeNode
	// size of the training subsample that reached this leaf; 0 for inner nodes
	size int
	leaf bool
}

// FitIsolationForest builds the forest from baseline rows. Every row must have
// the same, non-zero length; at least two rows are required.
func FitIsolationForest(data [][]float64, opts ForestOptions) (*IsolationForest, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("isolation forest needs at least 2 baseline rows, got %d", len(data))
	}
	dims := len(data[0])
	if dims == 0 {
		return nil, errors.New("baseline rows are empty")
	}
	for i, row := range data {
		if len(row) != dims {
			return nil, fmt.Errorf("baseline row %d has %d values, expected %d", i, len(row), dims)
		}
	}
	if opts.Trees <= 0 {
		opts.Trees = defaultTrees
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = defaultSampleSize
	}
	if opts.Threshold <= 0 || opts.Threshold >= 1 {
		opts.Threshold = defaultThreshold
	}
	psi := opts.SampleSize
	if psi > len(data) {
		psi = len(data)
	}
	limit := int(math.Ceil(math.Log2(float64(psi))))
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	f := &IsolationForest{trees: make([]*itreeNode, 0, opts.Trees), dims: dims, psi: psi, threshold: opts.Threshold}
	for t := 0; t < opts.Trees; t++ {
		perm := rng.Perm(len(data))[:psi]
		sample := make([][]float64, psi)
		for i, idx := range perm {
			sample[i] = data[idx]
		}
		f.trees = append(f.trees, buildITree(rng, sample, 0, limit))
	}
	return f, nil
}

func buildITree(rng *rand.Rand, rows [][]float64, depth, limit int) *itreeNode {
	if depth >= limit || len(rows) <= 1 {
		return &itreeNode{leaf: true, size: len(rows)}
	}
	dims := len(rows[0])
	col := make([]float64, len(rows))
	// Only features with spread can split the sample.
	candidates := make([]int, 0, dims)
	lo := make([]float64, dims)
	hi := make([]float64, dims)
	for q := 0; q < dims; q++ {
		for i, r := range rows {
			col[i] = r[q]
		}
		lo[q], hi[q] = floats.Min(col), floats.Max(col)
		if hi[q] > lo[q] {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return &itreeNode{leaf: true, size: len(rows)}
	}
	q := candidates[rng.IntN(len(candidates))]
	p := lo[q] + rng.Float64()*(hi[q]-lo[q])
	var left, right [][]float64
	for _, r := range rows {
		if r[q] < p {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return &itreeNode{
		feature: q,
		split:   p,
		left:    buildITree(rng, left, depth+1, limit),
		right:   buildITree(rng, right, depth+1, limit),
	}
}

// Dimensions is the baseline feature count.
func (f *IsolationForest) Dimensions() int { return f.dims }

// Threshold is the outlier cut-off on the anomaly score.
func (f *IsolationForest) Threshold() float64 { return f.threshold }

// AnomalyScore returns s(x) = 2^(-E[h(x)]/c(psi)) in (0,1].
func (f *IsolationForest) AnomalyScore(x []float64) float64 {
	var total float64
	for _, t := range f.trees {
		total += pathLength(t, x, 0)
	}
	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/averagePathLength(f.psi))
}

// Score implements AnomalyDetector.
func (f *IsolationForest) Score(ctx context.Context, features []float64) (AnomalyScore, error) {
	if len(features) != f.dims {
		return AnomalyScore{}, fmt.Errorf("expected %d features, got %d", f.dims, len(features))
	}
	if err := ctx.Err(); err != nil {
		return AnomalyScore{}, err
	}
	s := f.AnomalyScore(features)
	return AnomalyScore{Score: s, Outlier: s > f.threshold}, nil
}

func pathLength(n *itreeNode, x []float64, depth int) float64 {
	for !n.leaf {
		if x[n.feature] < n.split {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(n.size)
}

// averagePathLength is c(n), the mean path length of an unsuccessful BST search.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	m := float64(n - 1)
	return 2*(math.Log(m)+eulerGamma) - 2*m/float64(n)
}
