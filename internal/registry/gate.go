package registry

import (
	"context"
	"fmt"
	"time"

	"assessml/internal/backend"
)

// acquire reserves the handle's single slot when it is serialized. Waiting
// honors ctx; there is no internal timeout. Returns a release func to be deferred.
func (h *Handle) acquire(ctx context.Context) (func(), error) {
	h.inflight.Add(1)
	if h.gate == nil {
		return func() { h.inflight.Add(-1) }, nil
	}
	select {
	case h.gate <- struct{}{}:
		return func() { <-h.gate; h.inflight.Add(-1) }, nil
	case <-ctx.Done():
		h.inflight.Add(-1)
		return func() {}, ctx.Err()
	}
}

// invoke runs call under the handle's admission policy and records metrics.
func (h *Handle) invoke(ctx context.Context, call func() error) error {
	release, err := h.acquire(ctx)
	if err != nil {
		observeInvocation(h.capability, err, 0)
		return err
	}
	defer release()
	start := time.Now()
	err = call()
	observeInvocation(h.capability, err, time.Since(start))
	return err
}

// bind wraps the raw model in the interface its capability requires.
func bind(h *Handle) error {
	switch h.capability {
	case EntityTagger:
		m, ok := h.model.(backend.EntityTagger)
		if !ok {
			return mismatch(h)
		}
		h.bound = &boundTagger{h: h, m: m}
	case ZeroShotClassifier:
		m, ok := h.model.(backend.ZeroShotClassifier)
		if !ok {
			return mismatch(h)
		}
		h.bound = &boundClassifier{h: h, m: m}
	case TextEmbedder, CodeEmbedder:
		m, ok := h.model.(backend.TextEmbedder)
		if !ok {
			return mismatch(h)
		}
		h.bound = &boundEmbedder{h: h, m: m}
	case TextGenerator:
		m, ok := h.model.(backend.TextGenerator)
		if !ok {
			return mismatch(h)
		}
		h.bound = &boundGenerator{h: h, m: m}
	case AnomalyDetector:
		m, ok := h.model.(backend.AnomalyDetector)
		if !ok {
			return mismatch(h)
		}
		h.bound = &boundDetector{h: h, m: m}
	default:
		return fmt.Errorf("unknown capability %q", h.capability)
	}
	return nil
}

func mismatch(h *Handle) error {
	return fmt.Errorf("model %T does not implement %s", h.model, h.capability)
}

type boundTagger struct {
	h *Handle
	m backend.EntityTagger
}

func (b *boundTagger) Tag(ctx context.Context, text string) ([]backend.Entity, error) {
	var out []backend.Entity
	err := b.h.invoke(ctx, func() (err error) {
		out, err = b.m.Tag(ctx, text)
		return err
	})
	return out, err
}

type boundClassifier struct {
	h *Handle
	m backend.ZeroShotClassifier
}

func (b *boundClassifier) Classify(ctx context.Context, text string, labels []string) (backend.Classification, error) {
	var out backend.Classification
	err := b.h.invoke(ctx, func() (err error) {
		out, err = b.m.Classify(ctx, text, labels)
		return err
	})
	return out, err
}

type boundEmbedder struct {
	h *Handle
	m backend.TextEmbedder
}

func (b *boundEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	var out [][]float64
	err := b.h.invoke(ctx, func() (err error) {
		out, err = b.m.Embed(ctx, texts)
		return err
	})
	return out, err
}

type boundGenerator struct {
	h *Handle
	m backend.TextGenerator
}

func (b *boundGenerator) Generate(ctx context.Context, prompt string, params backend.GenerateParams) (string, error) {
	var out string
	err := b.h.invoke(ctx, func() (err error) {
		out, err = b.m.Generate(ctx, prompt, params)
		return err
	})
	return out, err
}

type boundDetector struct {
	h *Handle
	m backend.AnomalyDetector
}

// Dimensions reads fitted state only and bypasses the gate.
func (b *boundDetector) Dimensions() int { return b.m.Dimensions() }

func (b *boundDetector) Score(ctx context.Context, features []float64) (backend.AnomalyScore, error) {
	var out backend.AnomalyScore
	err := b.h.invoke(ctx, func() (err error) {
		out, err = b.m.Score(ctx, features)
		return err
	})
	return out, err
}
