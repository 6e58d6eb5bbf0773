package registry

import (
	"context"
	"sync/atomic"
	"time"
)

// State represents the registry lifecycle.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateDegraded      State = "degraded"
)

// Loader produces the model for one capability. Load is called at most once.
type Loader struct {
	Capability Capability
	Load       func(ctx context.Context) (any, error)
	// Serialize gates every call through a single slot; set it for models that
	// are not safe for concurrent invocation.
	Serialize bool
}

// Handle is the registry-owned reference to one loaded capability. Services
// borrow it; they never close or replace it.
type Handle struct {
	capability Capability
	model      any // raw model as returned by the loader
	bound      any // capability interface wrapped with gate and metrics
	gate       chan struct{}
	loadedAt   time.Time
	loadDur    time.Duration
	inflight   atomic.Int64
}

// Capability returns the tag this handle serves.
func (h *Handle) Capability() Capability { return h.capability }

// Serialized reports whether calls are gated through a single slot.
func (h *Handle) Serialized() bool { return h.gate != nil }

// LoadedAt is when the model finished loading.
func (h *Handle) LoadedAt() time.Time { return h.loadedAt }

// Model returns the capability interface bound to this handle, e.g. a
// backend.TextEmbedder for TextEmbedder.
func (h *Handle) Model() any { return h.bound }
