package service

import (
	"github.com/rs/zerolog"

	"assessml/internal/backend"
	"assessml/internal/registry"
	"assessml/pkg/types"
)

// Models resolves capability backends. *registry.Registry implements it.
type Models interface {
	EntityTagger() (backend.EntityTagger, error)
	ZeroShot() (backend.ZeroShotClassifier, error)
	Embedder() (backend.TextEmbedder, error)
	CodeEmbedder() (backend.TextEmbedder, error)
	Generator() (backend.TextGenerator, error)
	AnomalyDetector() (backend.AnomalyDetector, error)
}

var _ Models = (*registry.Registry)(nil)

// Options configures a Service.
type Options struct {
	Logger *zerolog.Logger
}

// Service runs the assessment operations against a set of models.
type Service struct {
	models Models
	log    zerolog.Logger
}

// New returns a Service backed by models.
func New(models Models, opts Options) *Service {
	s := &Service{models: models, log: zerolog.Nop()}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("component", "service").Logger()
	}
	return s
}

func ok(requestID string, payload any, confidence float64, explain string) types.Envelope {
	return types.Envelope{
		Status:     types.StatusOK,
		RequestID:  requestID,
		Payload:    payload,
		Confidence: confidence,
		Explain:    explain,
	}
}

func (s *Service) fail(c registry.Capability, requestID string, err error) error {
	s.log.Debug().Str("request_id", requestID).Str("capability", string(c)).Err(err).Msg("inference failed")
	return &InferenceFailure{Capability: c, RequestID: requestID, Err: err}
}
