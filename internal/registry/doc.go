// Package registry owns the inference models used by the services. It is
// structured into small files by concern:
//
//   - capability.go: capability tags and their fixed load order.
//   - registry.go: Registry type, lifecycle (Initialize), lookups (Get, typed accessors).
//   - types.go: State, Handle, Loader.
//   - errors.go: error types and helpers (IsNotReady, IsCapabilityUnavailable, IsModelLoad).
//   - gate.go: per-capability admission and the instrumented capability wrappers.
//   - loader.go: builds Loaders from config.
//   - events.go, eventpub_memory.go: lifecycle events.
//   - metrics.go: Prometheus collectors.
//
// A Registry is constructed explicitly and passed to the services; there is no
// package-level instance.
package registry
