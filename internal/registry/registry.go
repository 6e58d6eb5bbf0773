package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"assessml/internal/backend"
	"assessml/pkg/types"
)

// Options configures a Registry.
type Options struct {
	// Logger receives load progress. Nil disables logging.
	Logger *zerolog.Logger
	// Events receives lifecycle events. Nil drops them.
	Events EventPublisher
}

// Registry holds exactly one handle per capability and tracks the lifecycle
// Uninitialized → Loading → Ready | Degraded. There is no transition out of
// Ready or Degraded.
type Registry struct {
	mu       sync.RWMutex
	state    State
	loaders  map[Capability]Loader
	handles  map[Capability]*Handle
	failures map[Capability]error
	initErr  error
	done     chan struct{}

	log     zerolog.Logger
	events  EventPublisher
	started time.Time
}

// New constructs an Uninitialized registry. Each capability may have at most
// one loader; capabilities without one fail during Initialize.
func New(loaders []Loader, opts Options) (*Registry, error) {
	r := &Registry{
		state:    StateUninitialized,
		loaders:  make(map[Capability]Loader, len(loaders)),
		handles:  make(map[Capability]*Handle, len(loadOrder)),
		failures: make(map[Capability]error),
		done:     make(chan struct{}),
		log:      zerolog.Nop(),
		events:   noopPublisher{},
		started:  time.Now(),
	}
	if opts.Logger != nil {
		r.log = opts.Logger.With().Str("component", "registry").Logger()
	}
	if opts.Events != nil {
		r.events = opts.Events
	}
	for _, ld := range loaders {
		if !ld.Capability.Valid() {
			return nil, fmt.Errorf("unknown capability %q", ld.Capability)
		}
		if _, dup := r.loaders[ld.Capability]; dup {
			return nil, fmt.Errorf("duplicate loader for %s", ld.Capability)
		}
		r.loaders[ld.Capability] = ld
	}
	setStateGauge(StateUninitialized)
	return r, nil
}

// Initialize loads every capability in fixed order. A failure does not stop
// the sequence: capabilities after it are still attempted. The returned
// ModelLoadError names the first that failed, and the registry ends Degraded
// with the others usable. Later calls wait for the first
// one to finish and return its result.
func (r *Registry) Initialize(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateUninitialized {
		done := r.done
		r.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.initErr
	}
	r.state = StateLoading
	r.mu.Unlock()
	setStateGauge(StateLoading)
	r.log.Info().Int("capabilities", len(loadOrder)).Msg("loading models")

	start := time.Now()
	var firstErr error
	for _, c := range loadOrder {
		if err := r.load(ctx, c); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	r.mu.Lock()
	r.initErr = firstErr
	if firstErr == nil {
		r.state = StateReady
	} else {
		r.state = StateDegraded
	}
	state := r.state
	failed := len(r.failures)
	close(r.done)
	r.mu.Unlock()
	setStateGauge(state)

	if state == StateReady {
		r.events.Publish(Event{Name: EventRegistryReady, Fields: map[string]any{"duration": time.Since(start)}})
		r.log.Info().Dur("dur", time.Since(start)).Msg("registry ready")
	} else {
		r.events.Publish(Event{Name: EventRegistryDegraded, Fields: map[string]any{"failed": failed}})
		r.log.Warn().Int("failed", failed).Dur("dur", time.Since(start)).Err(firstErr).Msg("registry degraded")
	}
	return firstErr
}

func (r *Registry) load(ctx context.Context, c Capability) error {
	r.events.Publish(Event{Name: EventCapabilityLoading, Capability: c})
	ld, ok := r.loaders[c]
	start := time.Now()
	var (
		model any
		err   error
	)
	switch {
	case !ok || ld.Load == nil:
		err = errNoLoader
	case ctx.Err() != nil:
		err = ctx.Err()
	default:
		model, err = safeLoad(ctx, ld)
	}
	var h *Handle
	if err == nil {
		h = &Handle{capability: c, model: model, loadedAt: time.Now(), loadDur: time.Since(start)}
		if ld.Serialize {
			h.gate = make(chan struct{}, 1)
		}
		if err = bind(h); err != nil {
			closeModel(model)
		}
	}
	dur := time.Since(start)
	observeLoad(c, err, dur)
	if err != nil {
		lerr := &ModelLoadError{Capability: c, Err: err}
		r.mu.Lock()
		r.failures[c] = lerr
		r.mu.Unlock()
		r.events.Publish(Event{Name: EventCapabilityFailed, Capability: c, Fields: map[string]any{"error": err.Error()}})
		r.log.Error().Str("capability", string(c)).Dur("dur", dur).Err(err).Msg("capability failed to load")
		return lerr
	}
	r.mu.Lock()
	r.handles[c] = h
	r.mu.Unlock()
	r.events.Publish(Event{Name: EventCapabilityLoaded, Capability: c, Fields: map[string]any{"duration": dur, "serialized": h.Serialized()}})
	r.log.Info().Str("capability", string(c)).Dur("dur", dur).Bool("serialized", h.Serialized()).Msg("capability loaded")
	return nil
}

// safeLoad converts a panicking loader into a load error.
func safeLoad(ctx context.Context, ld Loader) (model any, err error) {
	defer func() {
		if p := recover(); p != nil {
			model, err = nil, fmt.Errorf("loader panic: %v", p)
		}
	}()
	model, err = ld.Load(ctx)
	if err == nil && model == nil {
		err = errors.New("loader returned no model")
	}
	return model, err
}

// Get returns the handle for c. The same *Handle is returned on every call.
func (r *Registry) Get(c Capability) (*Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state != StateReady && r.state != StateDegraded {
		return nil, &RegistryNotReadyError{Capability: c, State: r.state}
	}
	if h, ok := r.handles[c]; ok {
		return h, nil
	}
	cause := r.failures[c]
	if cause == nil {
		cause = fmt.Errorf("unknown capability %q", c)
	}
	return nil, &CapabilityUnavailableError{Capability: c, Err: cause}
}

func lookup[T any](r *Registry, c Capability) (T, error) {
	var zero T
	h, err := r.Get(c)
	if err != nil {
		return zero, err
	}
	m, ok := h.bound.(T)
	if !ok {
		return zero, &CapabilityUnavailableError{Capability: c, Err: mismatch(h)}
	}
	return m, nil
}

func (r *Registry) EntityTagger() (backend.EntityTagger, error) {
	return lookup[backend.EntityTagger](r, EntityTagger)
}

func (r *Registry) ZeroShot() (backend.ZeroShotClassifier, error) {
	return lookup[backend.ZeroShotClassifier](r, ZeroShotClassifier)
}

func (r *Registry) Embedder() (backend.TextEmbedder, error) {
	return lookup[backend.TextEmbedder](r, TextEmbedder)
}

func (r *Registry) CodeEmbedder() (backend.TextEmbedder, error) {
	return lookup[backend.TextEmbedder](r, CodeEmbedder)
}

func (r *Registry) Generator() (backend.TextGenerator, error) {
	return lookup[backend.TextGenerator](r, TextGenerator)
}

func (r *Registry) AnomalyDetector() (backend.AnomalyDetector, error) {
	return lookup[backend.AnomalyDetector](r, AnomalyDetector)
}

// State returns the lifecycle state.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Ready reports whether Initialize has completed, fully or degraded.
func (r *Registry) Ready() bool {
	s := r.State()
	return s == StateReady || s == StateDegraded
}

// Status builds the per-capability view served on /status.
func (r *Registry) Status() types.StatusResponse {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := time.Now()
	resp := types.StatusResponse{
		State:          string(r.state),
		Capabilities:   make([]types.CapabilityStatus, 0, len(loadOrder)),
		UptimeSeconds:  int64(now.Sub(r.started).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	for _, c := range loadOrder {
		cs := types.CapabilityStatus{Capability: string(c)}
		if h, ok := r.handles[c]; ok {
			cs.Loaded = true
			cs.Serialized = h.Serialized()
			cs.LoadMillis = h.loadDur.Milliseconds()
			cs.Inflight = h.inflight.Load()
		} else if err, ok := r.failures[c]; ok {
			cs.Error = err.Error()
		}
		resp.Capabilities = append(resp.Capabilities, cs)
	}
	return resp
}

// Close releases models that hold native or network resources. The registry
// stays in its final state; handles must not be used afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, c := range loadOrder {
		if h, ok := r.handles[c]; ok {
			if err := closeModel(h.model); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", c, err))
			}
		}
	}
	return errors.Join(errs...)
}

func closeModel(model any) error {
	if cl, ok := model.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
