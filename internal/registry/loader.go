package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"assessml/internal/backend"
	"assessml/internal/config"
)

// LoadersFromConfig builds one Loader per capability from the models section.
// Misconfiguration is not reported here; it surfaces as a ModelLoadError for
// the affected capability so the others still load.
func LoadersFromConfig(cfg config.Models, log zerolog.Logger) []Loader {
	return []Loader{
		textLoader(EntityTagger, cfg.EntityTagger, log, config.BackendRemote),
		textLoader(ZeroShotClassifier, cfg.ZeroShot, log, config.BackendRemote),
		textLoader(TextEmbedder, cfg.Embedder, log, config.BackendRemote, config.BackendOpenAI),
		textLoader(CodeEmbedder, cfg.CodeEmbedder, log, config.BackendRemote, config.BackendOpenAI),
		textLoader(TextGenerator, cfg.Generator, log, config.BackendRemote, config.BackendOpenAI, config.BackendLlama),
		anomalyLoader(cfg.Anomaly, log),
	}
}

func textLoader(c Capability, b config.Backend, log zerolog.Logger, allowed ...string) Loader {
	kind := strings.ToLower(strings.TrimSpace(b.Backend))
	ld := Loader{Capability: c, Serialize: b.Serialize}
	if kind == config.BackendLlama {
		// llama contexts are not reentrant
		ld.Serialize = true
	}
	ld.Load = func(ctx context.Context) (any, error) {
		if !contains(allowed, kind) {
			return nil, fmt.Errorf("backend %q not supported for %s (want one of %s)", b.Backend, c, strings.Join(allowed, ", "))
		}
		log.Debug().Str("capability", string(c)).Str("backend", kind).Str("endpoint", b.Endpoint).Msg("building backend")
		switch kind {
		case config.BackendRemote:
			return backend.NewRemote(backend.RemoteOptions{
				Endpoint:       b.Endpoint,
				APIKey:         b.APIKey,
				ConnectTimeout: time.Duration(b.ConnectTimeoutMillis) * time.Millisecond,
			})
		case config.BackendOpenAI:
			return backend.NewOpenAI(backend.OpenAIOptions{BaseURL: b.Endpoint, APIKey: b.APIKey, Model: b.Model})
		case config.BackendLlama:
			path, err := expandHome(b.Model)
			if err != nil {
				return nil, err
			}
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("model file: %w", err)
			}
			return backend.NewLlamaGenerator(path, b.ContextSize, b.Threads)
		}
		return nil, fmt.Errorf("backend %q not supported for %s", b.Backend, c)
	}
	return ld
}

func anomalyLoader(a config.Anomaly, log zerolog.Logger) Loader {
	return Loader{
		Capability: AnomalyDetector,
		Serialize:  a.Serialize,
		Load: func(ctx context.Context) (any, error) {
			if kind := strings.ToLower(strings.TrimSpace(a.Backend)); kind != config.BackendIForest {
				return nil, fmt.Errorf("backend %q not supported for %s (want %s)", a.Backend, AnomalyDetector, config.BackendIForest)
			}
			if a.BaselinePath == "" {
				return nil, fmt.Errorf("baseline_path is required for %s", AnomalyDetector)
			}
			path, err := expandHome(a.BaselinePath)
			if err != nil {
				return nil, err
			}
			rows, err := backend.LoadBaseline(path)
			if err != nil {
				return nil, err
			}
			f, err := backend.FitIsolationForest(rows, backend.ForestOptions{
				Trees:      a.Trees,
				SampleSize: a.SampleSize,
				Threshold:  a.Threshold,
				Seed:       a.Seed,
			})
			if err != nil {
				return nil, err
			}
			log.Debug().Str("baseline", path).Int("rows", len(rows)).Int("dims", f.Dimensions()).Msg("isolation forest fitted")
			return f, nil
		},
	}
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// expandHome expands a leading ~ in paths to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
