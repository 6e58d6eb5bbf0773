package registry

// Event names published during Initialize.
const (
	EventCapabilityLoading = "capability.loading"
	EventCapabilityLoaded  = "capability.loaded"
	EventCapabilityFailed  = "capability.failed"
	EventRegistryReady     = "registry.ready"
	EventRegistryDegraded  = "registry.degraded"
)

// Event represents a registry lifecycle event.
// Minimal and stable: name + capability and optional fields via key/values.
type Event struct {
	Name       string
	Capability Capability
	Fields     map[string]any
}

// EventPublisher receives events from the registry. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
