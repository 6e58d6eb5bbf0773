package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces environment overrides, e.g. ASSESSML_ADDR or
// ASSESSML_MODELS_GENERATOR_ENDPOINT.
const EnvPrefix = "ASSESSML"

// ApplyEnv overlays environment variables onto cfg. Variables that are not
// set leave the corresponding field untouched.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("load env config: %w", err)
	}
	return nil
}
