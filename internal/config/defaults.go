package config

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultAddr         = ":8000"
	DefaultMaxBodyBytes = 1 << 20
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"

	DefaultTrees      = 100
	DefaultSampleSize = 256
	DefaultThreshold  = 0.5
	DefaultSeed       = 42
)

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.RequestTimeoutSeconds < 0 {
		c.RequestTimeoutSeconds = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Request-Id"}
	}
	for _, b := range []*Backend{&c.Models.EntityTagger, &c.Models.ZeroShot, &c.Models.Embedder, &c.Models.CodeEmbedder, &c.Models.Generator} {
		if b.Backend == "" {
			b.Backend = BackendRemote
		}
	}
	a := &c.Models.Anomaly
	if a.Backend == "" {
		a.Backend = BackendIForest
	}
	if a.Trees <= 0 {
		a.Trees = DefaultTrees
	}
	if a.SampleSize <= 0 {
		a.SampleSize = DefaultSampleSize
	}
	if a.Threshold <= 0 || a.Threshold >= 1 {
		a.Threshold = DefaultThreshold
	}
	if a.Seed == 0 {
		a.Seed = DefaultSeed
	}
}
