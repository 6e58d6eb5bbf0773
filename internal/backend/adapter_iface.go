package backend

import "context"

// Entity is one span emitted by an entity tagger, grouped by category
// (ORG, MISC, PER, LOC for CoNLL-style taggers).
type Entity struct {
	Group string
	Word  string
	Score float64
	Start int
	End   int
}

// EntityTagger extracts named entities from text.
type EntityTagger interface {
	Tag(ctx context.Context, text string) ([]Entity, error)
}

// Classification is a zero-shot result. Labels are ranked by descending score
// and Scores[i] belongs to Labels[i].
type Classification struct {
	Labels []string
	Scores []float64
}

// ZeroShotClassifier ranks arbitrary candidate labels against text.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string) (Classification, error)
}

// TextEmbedder returns one embedding per input text, in input order.
type TextEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// GenerateParams bounds a single generation call.
type GenerateParams struct {
	MaxTokens int
}

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, params GenerateParams) (string, error)
}

// AnomalyScore is the detector's verdict for one feature vector.
type AnomalyScore struct {
	// Score in [0,1]; values near 1 are easier to isolate.
	Score   float64
	Outlier bool
}

// AnomalyDetector scores feature vectors against a pre-fit baseline.
type AnomalyDetector interface {
	// Dimensions is the feature vector length the detector was fit on.
	Dimensions() int
	Score(ctx context.Context, features []float64) (AnomalyScore, error)
}
