package service

import (
	"context"
	"fmt"

	"assessml/internal/backend"
	"assessml/internal/registry"
	"assessml/pkg/types"
)

// PlagiarismThreshold is the similarity above which a pair is high risk.
const PlagiarismThreshold = 0.85

const explainPlagiarism = "Embedding similarity based plagiarism check"

// CheckPlagiarism reports the most similar pair among the texts. A text is
// never compared with itself.
func (s *Service) CheckPlagiarism(ctx context.Context, req PlagiarismRequest) (types.Envelope, error) {
	if err := req.Validate(); err != nil {
		return types.Envelope{}, err
	}
	c := registry.TextEmbedder
	var (
		emb backend.TextEmbedder
		err error
	)
	if req.Code {
		c = registry.CodeEmbedder
		emb, err = s.models.CodeEmbedder()
	} else {
		emb, err = s.models.Embedder()
	}
	if err != nil {
		return types.Envelope{}, s.fail(c, req.RequestID, err)
	}

	vecs, err := emb.Embed(ctx, req.Texts)
	if err != nil {
		return types.Envelope{}, s.fail(c, req.RequestID, err)
	}
	if len(vecs) != len(req.Texts) {
		return types.Envelope{}, s.fail(c, req.RequestID, fmt.Errorf("want %d embeddings, got %d", len(req.Texts), len(vecs)))
	}
	sim, pair, err := maxPairSimilarity(vecs)
	if err != nil {
		return types.Envelope{}, s.fail(c, req.RequestID, err)
	}
	flag := types.FlagLowRisk
	if sim > PlagiarismThreshold {
		flag = types.FlagHighRisk
	}
	s.log.Debug().Str("request_id", req.RequestID).Str("capability", string(c)).
		Int("texts", len(req.Texts)).Float64("similarity", sim).Str("flag", flag).Msg("plagiarism checked")
	res := types.PlagiarismResult{Similarity: sim, Flag: flag, Pair: pair}
	return ok(req.RequestID, res, 0.9, explainPlagiarism), nil
}
