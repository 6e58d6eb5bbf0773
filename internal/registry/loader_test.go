package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"assessml/internal/backend"
	"assessml/internal/config"
)

func findLoader(t *testing.T, ls []Loader, c Capability) Loader {
	t.Helper()
	for _, l := range ls {
		if l.Capability == c {
			return l
		}
	}
	t.Fatalf("no loader for %s", c)
	return Loader{}
}

func TestLoadersFromConfig_OnePerCapability(t *testing.T) {
	ls := LoadersFromConfig(config.Models{}, zerolog.Nop())
	if len(ls) != len(Capabilities()) {
		t.Fatalf("got %d loaders", len(ls))
	}
	if _, err := New(ls, Options{}); err != nil {
		t.Fatalf("loaders rejected: %v", err)
	}
}

func TestLoadersFromConfig_Remote(t *testing.T) {
	cfg := config.Models{EntityTagger: config.Backend{Backend: "remote", Endpoint: "http://127.0.0.1:1/ner"}}
	l := findLoader(t, LoadersFromConfig(cfg, zerolog.Nop()), EntityTagger)
	m, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := m.(backend.EntityTagger); !ok {
		t.Fatalf("unexpected model %T", m)
	}
}

func TestLoadersFromConfig_UnsupportedBackend(t *testing.T) {
	cfg := config.Models{ZeroShot: config.Backend{Backend: "openai", Model: "gpt"}}
	l := findLoader(t, LoadersFromConfig(cfg, zerolog.Nop()), ZeroShotClassifier)
	if _, err := l.Load(context.Background()); err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected unsupported backend error, got %v", err)
	}
}

func TestLoadersFromConfig_LlamaIsSerialized(t *testing.T) {
	cfg := config.Models{Generator: config.Backend{Backend: "llama", Model: filepath.Join(t.TempDir(), "missing.gguf")}}
	l := findLoader(t, LoadersFromConfig(cfg, zerolog.Nop()), TextGenerator)
	if !l.Serialize {
		t.Fatalf("llama generator must be serialized")
	}
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing model file")
	}
}

func TestLoadersFromConfig_IsolationForest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.csv")
	var sb strings.Builder
	sb.WriteString("typing_speed,tab_switches\n")
	for i := 0; i < 40; i++ {
		sb.WriteString("50,1\n51,2\n49,1\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := config.Models{Anomaly: config.Anomaly{Backend: "iforest", BaselinePath: path, Trees: 20, SampleSize: 64, Threshold: 0.5, Seed: 1}}
	l := findLoader(t, LoadersFromConfig(cfg, zerolog.Nop()), AnomalyDetector)
	m, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d, ok := m.(backend.AnomalyDetector)
	if !ok || d.Dimensions() != 2 {
		t.Fatalf("unexpected detector %T", m)
	}
}

func TestLoadersFromConfig_AnomalyNeedsBaseline(t *testing.T) {
	cfg := config.Models{Anomaly: config.Anomaly{Backend: "iforest"}}
	l := findLoader(t, LoadersFromConfig(cfg, zerolog.Nop()), AnomalyDetector)
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatalf("expected error without baseline")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir on this platform: %v", err)
	}
	got, err := expandHome("~/models/q.gguf")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, "models", "q.gguf") {
		t.Fatalf("got %s", got)
	}
	if got, _ := expandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path changed: %s", got)
	}
}
