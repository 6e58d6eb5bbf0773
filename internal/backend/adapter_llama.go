//go:build llama

package backend

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// LlamaGenerator owns one in-process llama.cpp model. The token callback is
// per model, so calls must be serialized by the caller.
type LlamaGenerator struct {
	model   *llama.LLama
	threads int
}

// NewLlamaGenerator loads the GGUF model at modelPath.
func NewLlamaGenerator(modelPath string, ctxSize, threads int) (*LlamaGenerator, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	m, err := llama.New(modelPath, llama.SetContext(zn(ctxSize, 2048)))
	if err != nil {
		return nil, err
	}
	return &LlamaGenerator{model: m, threads: zn(threads, 4)}, nil
}

func (g *LlamaGenerator) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	if g.model == nil {
		return "", errors.New("llama model not initialized")
	}
	// Stop generation when the caller goes away.
	g.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	text, err := g.model.Predict(prompt,
		llama.SetTokens(zn(params.MaxTokens, 256)),
		llama.SetThreads(g.threads),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return strings.TrimSpace(text), nil
}

func (g *LlamaGenerator) Close() error {
	if g.model != nil {
		g.model.Free()
		g.model = nil
	}
	return nil
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
