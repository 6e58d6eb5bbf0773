package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessml/internal/registry"
	"assessml/pkg/types"
)

func TestGradeAnswer_IdenticalScoresTen(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"  It matches the reference exactly.  "}}
	svc := New(&fakeModels{emb: bowEmbedder{dims: 256}, gen: gen}, Options{})
	text := "A goroutine is a lightweight thread managed by the Go runtime"
	req, err := NewGradeRequest("g-1", text, text)
	require.NoError(t, err)

	env, err := svc.GradeAnswer(context.Background(), req)
	require.NoError(t, err)
	res := env.Payload.(types.GradeResult)
	assert.Equal(t, 10.0, res.Score)
	assert.InDelta(t, 1.0, res.Similarity, 1e-12)
	assert.Equal(t, "It matches the reference exactly.", res.Explanation)
	assert.Equal(t, 0.88, env.Confidence)
	assert.Equal(t, explainGrading, env.Explain)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "Explain why this answer scored 10/10:\n"+text, gen.prompts[0])
	assert.Equal(t, 150, gen.params[0].MaxTokens)
}

func TestGradeAnswer_ScoreInRange(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"partial"}}
	svc := New(&fakeModels{emb: bowEmbedder{dims: 256}, gen: gen}, Options{})
	env, err := svc.GradeAnswer(context.Background(), GradeRequest{
		RequestID:   "r",
		Answer:      "channels pass values between goroutines",
		ModelAnswer: "goroutines communicate by sending values over channels",
	})
	require.NoError(t, err)
	res := env.Payload.(types.GradeResult)
	assert.Greater(t, res.Score, 0.0)
	assert.Less(t, res.Score, 10.0)
	assert.Equal(t, round2(res.Score), res.Score)
}

func TestGradeAnswer_NegativeSimilarityClamped(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"opposite"}}
	emb := fixedEmbedder{vecs: [][]float64{{1, 0}, {-1, 0}}}
	env, err := New(&fakeModels{emb: emb, gen: gen}, Options{}).GradeAnswer(context.Background(), GradeRequest{RequestID: "r", Answer: "a", ModelAnswer: "b"})
	require.NoError(t, err)
	res := env.Payload.(types.GradeResult)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 0.0, res.Similarity)
}

func TestGradeAnswer_MissingGenerator(t *testing.T) {
	_, err := New(&fakeModels{emb: bowEmbedder{dims: 8}}, Options{}).GradeAnswer(context.Background(), GradeRequest{RequestID: "r", Answer: "a", ModelAnswer: "b"})
	var f *InferenceFailure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, registry.TextGenerator, f.Capability)
}

func TestGradeAnswer_NonFiniteEmbeddingFails(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"unused"}}
	emb := fixedEmbedder{vecs: [][]float64{{math.NaN(), 1}, {1, 0}}}
	_, err := New(&fakeModels{emb: emb, gen: gen}, Options{}).GradeAnswer(context.Background(), GradeRequest{RequestID: "r", Answer: "a", ModelAnswer: "b"})
	var f *InferenceFailure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, registry.TextEmbedder, f.Capability)
	assert.Empty(t, gen.prompts)
}
