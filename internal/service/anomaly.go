package service

import (
	"context"
	"fmt"

	"assessml/internal/registry"
	"assessml/pkg/types"
)

const explainAnomaly = "Isolation Forest based anomaly detection"

// AnalyzeAnomaly scores a behavioral feature vector against the detector's
// baseline. The vector must match the baseline dimensionality.
func (s *Service) AnalyzeAnomaly(ctx context.Context, req AnomalyRequest) (types.Envelope, error) {
	if err := req.Validate(); err != nil {
		return types.Envelope{}, err
	}
	det, err := s.models.AnomalyDetector()
	if err != nil {
		return types.Envelope{}, s.fail(registry.AnomalyDetector, req.RequestID, err)
	}
	if want := det.Dimensions(); len(req.Features) != want {
		return types.Envelope{}, invalid("features", fmt.Sprintf("must have %d values, got %d", want, len(req.Features)))
	}
	sc, err := det.Score(ctx, req.Features)
	if err != nil {
		return types.Envelope{}, s.fail(registry.AnomalyDetector, req.RequestID, err)
	}
	risk := types.RiskLow
	if sc.Outlier {
		risk = types.RiskHigh
	}
	s.log.Debug().Str("request_id", req.RequestID).Float64("score", sc.Score).Str("risk", risk).Msg("anomaly scored")
	return ok(req.RequestID, types.AnomalyResult{Risk: risk, Score: sc.Score}, 0.8, explainAnomaly), nil
}
