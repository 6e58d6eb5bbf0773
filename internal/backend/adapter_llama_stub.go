//go:build !llama

package backend

// This file provides a no-CGO stub for the llama generator. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.

import "context"

// llamaBuilt indicates whether this binary was compiled with real llama support.
var llamaBuilt = false

// LlamaGenerator is unavailable in this build.
type LlamaGenerator struct{}

// NewLlamaGenerator fails fast: llama runtime not available in this build.
func NewLlamaGenerator(modelPath string, ctxSize, threads int) (*LlamaGenerator, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (g *LlamaGenerator) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	return "", ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (g *LlamaGenerator) Close() error { return nil }
