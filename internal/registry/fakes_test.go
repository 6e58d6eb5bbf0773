package registry

import (
	"context"
	"sync/atomic"
	"time"

	"assessml/internal/backend"
)

type fakeTagger struct{}

func (fakeTagger) Tag(context.Context, string) ([]backend.Entity, error) {
	return []backend.Entity{{Group: "MISC", Word: "go", Score: 0.9}}, nil
}

type fakeClassifier struct{}

func (fakeClassifier) Classify(_ context.Context, _ string, labels []string) (backend.Classification, error) {
	return backend.Classification{Labels: labels, Scores: make([]float64, len(labels))}, nil
}

// slowEmbedder records the peak number of concurrent Embed calls.
type slowEmbedder struct {
	delay  time.Duration
	cur    atomic.Int64
	peak   atomic.Int64
	closed atomic.Bool
}

func (e *slowEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	n := e.cur.Add(1)
	defer e.cur.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(e.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	out := make([][]float64, len(texts))
	for i := range out {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

func (e *slowEmbedder) Close() error { e.closed.Store(true); return nil }

type fakeGenerator struct{}

func (fakeGenerator) Generate(context.Context, string, backend.GenerateParams) (string, error) {
	return "ok", nil
}

type fakeDetector struct{}

func (fakeDetector) Dimensions() int { return 2 }
func (fakeDetector) Score(context.Context, []float64) (backend.AnomalyScore, error) {
	return backend.AnomalyScore{Score: 0.3}, nil
}

func constLoader(c Capability, m any) Loader {
	return Loader{Capability: c, Load: func(context.Context) (any, error) { return m, nil }}
}

func fullLoaders() []Loader {
	return []Loader{
		constLoader(EntityTagger, fakeTagger{}),
		constLoader(ZeroShotClassifier, fakeClassifier{}),
		constLoader(TextEmbedder, &slowEmbedder{}),
		constLoader(CodeEmbedder, &slowEmbedder{}),
		constLoader(TextGenerator, fakeGenerator{}),
		constLoader(AnomalyDetector, fakeDetector{}),
	}
}

func replace(ls []Loader, l Loader) []Loader {
	out := make([]Loader, len(ls))
	copy(out, ls)
	for i := range out {
		if out[i].Capability == l.Capability {
			out[i] = l
		}
	}
	return out
}
