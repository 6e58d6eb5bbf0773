package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr                  string     `json:"addr" yaml:"addr" toml:"addr" envconfig:"ADDR"`
	MaxBodyBytes          int64      `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
	RequestTimeoutSeconds int64      `json:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds" envconfig:"REQUEST_TIMEOUT_SECONDS"`
	LogLevel              string     `json:"log_level" yaml:"log_level" toml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat             string     `json:"log_format" yaml:"log_format" toml:"log_format" envconfig:"LOG_FORMAT"`
	CORS                  CORSConfig `json:"cors" yaml:"cors" toml:"cors" envconfig:"CORS"`
	Models                Models     `json:"models" yaml:"models" toml:"models" envconfig:"MODELS"`
}

// CORSConfig enables cross-origin access for browser clients.
type CORSConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled" envconfig:"ENABLED"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods" envconfig:"ALLOWED_METHODS"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers" envconfig:"ALLOWED_HEADERS"`
}

// Models configures one backend per capability.
type Models struct {
	EntityTagger Backend `json:"entity_tagger" yaml:"entity_tagger" toml:"entity_tagger" envconfig:"ENTITY_TAGGER"`
	ZeroShot     Backend `json:"zero_shot" yaml:"zero_shot" toml:"zero_shot" envconfig:"ZERO_SHOT"`
	Embedder     Backend `json:"embedder" yaml:"embedder" toml:"embedder" envconfig:"EMBEDDER"`
	CodeEmbedder Backend `json:"code_embedder" yaml:"code_embedder" toml:"code_embedder" envconfig:"CODE_EMBEDDER"`
	Generator    Backend `json:"generator" yaml:"generator" toml:"generator" envconfig:"GENERATOR"`
	Anomaly      Anomaly `json:"anomaly" yaml:"anomaly" toml:"anomaly" envconfig:"ANOMALY"`
}

// Backend kinds.
const (
	BackendRemote  = "remote"
	BackendOpenAI  = "openai"
	BackendLlama   = "llama"
	BackendIForest = "iforest"
)

// Backend selects and configures the runtime behind a text capability.
type Backend struct {
	// remote | openai | llama
	Backend  string `json:"backend" yaml:"backend" toml:"backend" envconfig:"BACKEND"`
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint" envconfig:"ENDPOINT"`
	APIKey   string `json:"api_key" yaml:"api_key" toml:"api_key" envconfig:"API_KEY"`
	// Model name (openai) or GGUF path (llama).
	Model string `json:"model" yaml:"model" toml:"model" envconfig:"MODEL"`
	// Serialize calls through a single slot for backends that are not reentrant.
	Serialize            bool  `json:"serialize" yaml:"serialize" toml:"serialize" envconfig:"SERIALIZE"`
	ConnectTimeoutMillis int64 `json:"connect_timeout_ms" yaml:"connect_timeout_ms" toml:"connect_timeout_ms" envconfig:"CONNECT_TIMEOUT_MS"`
	ContextSize          int   `json:"context_size" yaml:"context_size" toml:"context_size" envconfig:"CONTEXT_SIZE"`
	Threads              int   `json:"threads" yaml:"threads" toml:"threads" envconfig:"THREADS"`
}

// Anomaly configures the isolation forest fit at load time.
type Anomaly struct {
	// iforest
	Backend      string  `json:"backend" yaml:"backend" toml:"backend" envconfig:"BACKEND"`
	BaselinePath string  `json:"baseline_path" yaml:"baseline_path" toml:"baseline_path" envconfig:"BASELINE_PATH"`
	Trees        int     `json:"trees" yaml:"trees" toml:"trees" envconfig:"TREES"`
	SampleSize   int     `json:"sample_size" yaml:"sample_size" toml:"sample_size" envconfig:"SAMPLE_SIZE"`
	Threshold    float64 `json:"threshold" yaml:"threshold" toml:"threshold" envconfig:"THRESHOLD"`
	Seed         uint64  `json:"seed" yaml:"seed" toml:"seed" envconfig:"SEED"`
	Serialize    bool    `json:"serialize" yaml:"serialize" toml:"serialize" envconfig:"SERIALIZE"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Resolve loads path (when non-empty), overlays ASSESSML_* environment
// variables, and applies defaults. It is the single entry point used by main.
func Resolve(path string) (Config, error) {
	var cfg Config
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
