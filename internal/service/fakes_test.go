package service

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"assessml/internal/backend"
	"assessml/internal/registry"
)

// bowEmbedder is a deterministic hashed bag-of-words embedder.
type bowEmbedder struct{ dims int }

func (e bowEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v := make([]float64, e.dims)
		for _, w := range strings.FieldsFunc(strings.ToLower(t), func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			v[h.Sum32()%uint32(e.dims)]++
		}
		out[i] = v
	}
	return out, nil
}

type fixedEmbedder struct{ vecs [][]float64 }

func (e fixedEmbedder) Embed(context.Context, []string) ([][]float64, error) { return e.vecs, nil }

type scriptedTagger struct{ ents []backend.Entity }

func (t scriptedTagger) Tag(context.Context, string) ([]backend.Entity, error) { return t.ents, nil }

// keywordClassifier ranks the label that appears in the text first.
type keywordClassifier struct {
	mu    sync.Mutex
	calls int
}

func (c *keywordClassifier) Classify(_ context.Context, text string, labels []string) (backend.Classification, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	lower := strings.ToLower(text)
	out := backend.Classification{}
	var rest []string
	for _, l := range labels {
		if strings.Contains(lower, l) {
			out.Labels = append(out.Labels, l)
			out.Scores = append(out.Scores, 0.8)
		} else {
			rest = append(rest, l)
		}
	}
	for _, l := range rest {
		out.Labels = append(out.Labels, l)
		out.Scores = append(out.Scores, 0.2/float64(len(labels)))
	}
	return out, nil
}

// scriptedGenerator returns outputs in order and repeats the last one.
type scriptedGenerator struct {
	mu      sync.Mutex
	outputs []string
	err     error
	prompts []string
	params  []backend.GenerateParams
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string, p backend.GenerateParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.params = append(g.params, p)
	if g.err != nil {
		return "", g.err
	}
	i := len(g.prompts) - 1
	if i >= len(g.outputs) {
		i = len(g.outputs) - 1
	}
	return g.outputs[i], nil
}

type thresholdDetector struct {
	dims   int
	limit  float64
	scored int
}

func (d *thresholdDetector) Dimensions() int { return d.dims }

func (d *thresholdDetector) Score(_ context.Context, x []float64) (backend.AnomalyScore, error) {
	d.scored++
	for _, v := range x {
		if v > d.limit {
			return backend.AnomalyScore{Score: 0.9, Outlier: true}, nil
		}
	}
	return backend.AnomalyScore{Score: 0.3}, nil
}

// fakeModels satisfies Models; a nil field resolves as unavailable.
type fakeModels struct {
	tagger backend.EntityTagger
	clf    backend.ZeroShotClassifier
	emb    backend.TextEmbedder
	code   backend.TextEmbedder
	gen    backend.TextGenerator
	det    backend.AnomalyDetector
	// resolved counts accessor calls
	resolved int
}

var errMissing = errors.New("not loaded")

func unavailable(c registry.Capability) error {
	return &registry.CapabilityUnavailableError{Capability: c, Err: errMissing}
}

func (m *fakeModels) EntityTagger() (backend.EntityTagger, error) {
	m.resolved++
	if m.tagger == nil {
		return nil, unavailable(registry.EntityTagger)
	}
	return m.tagger, nil
}

func (m *fakeModels) ZeroShot() (backend.ZeroShotClassifier, error) {
	m.resolved++
	if m.clf == nil {
		return nil, unavailable(registry.ZeroShotClassifier)
	}
	return m.clf, nil
}

func (m *fakeModels) Embedder() (backend.TextEmbedder, error) {
	m.resolved++
	if m.emb == nil {
		return nil, unavailable(registry.TextEmbedder)
	}
	return m.emb, nil
}

func (m *fakeModels) CodeEmbedder() (backend.TextEmbedder, error) {
	m.resolved++
	if m.code == nil {
		return nil, unavailable(registry.CodeEmbedder)
	}
	return m.code, nil
}

func (m *fakeModels) Generator() (backend.TextGenerator, error) {
	m.resolved++
	if m.gen == nil {
		return nil, unavailable(registry.TextGenerator)
	}
	return m.gen, nil
}

func (m *fakeModels) AnomalyDetector() (backend.AnomalyDetector, error) {
	m.resolved++
	if m.det == nil {
		return nil, unavailable(registry.AnomalyDetector)
	}
	return m.det, nil
}

const wellFormedQuestions = `[
 {"question": "Which keyword defines a function in Python?", "options": ["func", "def", "fn", "lambda"], "answer": 1},
 {"question": "What does len([1,2]) return?", "options": ["1", "2", "3", "error"], "answer": "B"},
 {"question": "Which type is immutable?", "options": ["list", "dict", "tuple", "set"], "answer": "tuple"}
]`
