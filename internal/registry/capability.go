package registry

// Capability identifies one inference model's function.
type Capability string

const (
	EntityTagger       Capability = "entity-tagger"
	ZeroShotClassifier Capability = "zero-shot-classifier"
	TextEmbedder       Capability = "text-embedder"
	CodeEmbedder       Capability = "code-embedder"
	TextGenerator      Capability = "text-generator"
	AnomalyDetector    Capability = "anomaly-detector"
)

// loadOrder is the fixed order Initialize loads capabilities in.
var loadOrder = []Capability{
	EntityTagger,
	ZeroShotClassifier,
	TextEmbedder,
	CodeEmbedder,
	TextGenerator,
	AnomalyDetector,
}

// Capabilities returns every capability in load order.
func Capabilities() []Capability {
	out := make([]Capability, len(loadOrder))
	copy(out, loadOrder)
	return out
}

// Valid reports whether c is a known capability tag.
func (c Capability) Valid() bool {
	for _, k := range loadOrder {
		if k == c {
			return true
		}
	}
	return false
}

func (c Capability) String() string { return string(c) }
