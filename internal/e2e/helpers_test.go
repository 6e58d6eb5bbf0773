package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"unicode"

	"github.com/rs/zerolog"

	"assessml/internal/config"
	"assessml/internal/httpapi"
	"assessml/internal/registry"
	"assessml/internal/service"
)

const fakeQuestions = `[
{"question": "Which keyword defines a function?", "options": ["func", "def", "fn", "lambda"], "answer": 1},
{"question": "Which type is immutable?", "options": ["list", "dict", "tuple", "set"], "answer": "C"},
{"question": "What does len('ab') return?", "options": ["1", "2", "3", "error"], "answer": "2"}
]`

// fakeInferenceServer mimics HuggingFace-style pipeline endpoints:
// /ner, /zero-shot, /embed and /generate.
func fakeInferenceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ner", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Inputs string `json:"inputs"` }
		_ = json.NewDecoder(r.Body).Decode(&req)
		var ents []map[string]any
		for _, word := range []string{"Python", "AWS", "Kubernetes"} {
			if i := strings.Index(req.Inputs, word); i >= 0 {
				ents = append(ents, map[string]any{"entity_group": "MISC", "word": word, "score": 0.98, "start": i, "end": i + len(word)})
			}
		}
		if i := strings.Index(req.Inputs, "Alice"); i >= 0 {
			ents = append(ents, map[string]any{"entity_group": "PER", "word": "Alice", "score": 0.99, "start": i, "end": i + 5})
		}
		writeJSON(w, ents)
	})
	mux.HandleFunc("/zero-shot", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Inputs     string `json:"inputs"`
			Parameters struct {
				CandidateLabels []string `json:"candidate_labels"`
			} `json:"parameters"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		type pair struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		}
		var out []pair
		for _, l := range req.Parameters.CandidateLabels {
			s := 0.05
			if strings.Contains(strings.ToLower(req.Inputs), l) {
				s = 0.9
			}
			out = append(out, pair{Label: l, Score: s})
		}
		writeJSON(w, out)
	})
	mux.HandleFunc("/embed", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Inputs []string `json:"inputs"` }
		_ = json.NewDecoder(r.Body).Decode(&req)
		out := make([][]float64, len(req.Inputs))
		for i, s := range req.Inputs {
			out[i] = bagOfWords(s, 128)
		}
		writeJSON(w, out)
	})
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Inputs string `json:"inputs"` }
		_ = json.NewDecoder(r.Body).Decode(&req)
		text := "The answer covers the key points."
		if strings.Contains(req.Inputs, "MCQ") {
			text = "```json\n" + fakeQuestions + "\n```"
		}
		writeJSON(w, []map[string]string{{"generated_text": text}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func bagOfWords(s string, dims int) []float64 {
	v := make([]float64, dims)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%uint32(dims)]++
	}
	return v
}

// writeBaseline writes a two-feature CSV baseline clustered around (50, 2).
func writeBaseline(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("typing_speed,tab_switches\n")
	for i := 0; i < 200; i++ {
		sb.WriteString(strconv.Itoa(45+i%10) + "," + strconv.Itoa(1+i%3))
		sb.WriteByte('\n')
	}
	p := filepath.Join(t.TempDir(), "baseline.csv")
	if err := os.WriteFile(p, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write baseline: %v", err)
	}
	return p
}

func modelsConfig(inferURL, baseline string) config.Models {
	remote := func(path string) config.Backend {
		return config.Backend{Backend: config.BackendRemote, Endpoint: inferURL + path}
	}
	return config.Models{
		EntityTagger: remote("/ner"),
		ZeroShot:     remote("/zero-shot"),
		Embedder:     remote("/embed"),
		CodeEmbedder: remote("/embed"),
		Generator:    remote("/generate"),
		Anomaly: config.Anomaly{
			Backend:      config.BackendIForest,
			BaselinePath: baseline,
			Trees:        100,
			SampleSize:   128,
			Threshold:    0.5,
			Seed:         7,
		},
	}
}

// newServer wires config → registry → service → HTTP exactly as serve does.
func newServer(t *testing.T, models config.Models) (*httptest.Server, *registry.Registry, error) {
	t.Helper()
	log := zerolog.Nop()
	reg, err := registry.New(registry.LoadersFromConfig(models, log), registry.Options{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	initErr := reg.Initialize(context.Background())
	t.Cleanup(func() { _ = reg.Close() })
	srv := httptest.NewServer(httpapi.NewMux(service.New(reg, service.Options{}), reg))
	t.Cleanup(srv.Close)
	return srv, reg, initErr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
