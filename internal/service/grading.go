package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"assessml/internal/backend"
	"assessml/internal/registry"
	"assessml/pkg/types"
)

const (
	explanationMaxTokens = 150
	explainGrading       = "Hybrid embedding + LLM rubric grading"
)

// GradeAnswer scores an answer by embedding similarity to the reference answer
// and asks the generator to explain the score.
func (s *Service) GradeAnswer(ctx context.Context, req GradeRequest) (types.Envelope, error) {
	if err := req.Validate(); err != nil {
		return types.Envelope{}, err
	}
	emb, err := s.models.Embedder()
	if err != nil {
		return types.Envelope{}, s.fail(registry.TextEmbedder, req.RequestID, err)
	}
	gen, err := s.models.Generator()
	if err != nil {
		return types.Envelope{}, s.fail(registry.TextGenerator, req.RequestID, err)
	}

	vecs, err := emb.Embed(ctx, []string{req.Answer, req.ModelAnswer})
	if err != nil {
		return types.Envelope{}, s.fail(registry.TextEmbedder, req.RequestID, err)
	}
	if len(vecs) != 2 {
		return types.Envelope{}, s.fail(registry.TextEmbedder, req.RequestID, fmt.Errorf("want 2 embeddings, got %d", len(vecs)))
	}
	sim, err := cosine(vecs[0], vecs[1])
	if err != nil {
		return types.Envelope{}, s.fail(registry.TextEmbedder, req.RequestID, err)
	}
	sim = clamp(sim, 0, 1)
	score := round2(sim * 10)

	prompt := fmt.Sprintf("Explain why this answer scored %s/10:\n%s", strconv.FormatFloat(score, 'f', -1, 64), req.Answer)
	explanation, err := gen.Generate(ctx, prompt, backend.GenerateParams{MaxTokens: explanationMaxTokens})
	if err != nil {
		return types.Envelope{}, s.fail(registry.TextGenerator, req.RequestID, err)
	}
	s.log.Debug().Str("request_id", req.RequestID).Float64("score", score).Msg("answer graded")
	res := types.GradeResult{Score: score, Similarity: sim, Explanation: strings.TrimSpace(explanation)}
	return ok(req.RequestID, res, 0.88, explainGrading), nil
}
