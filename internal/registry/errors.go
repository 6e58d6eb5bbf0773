package registry

import (
	"errors"
	"fmt"
)

// RegistryNotReadyError is returned when a capability is requested before
// Initialize has completed.
type RegistryNotReadyError struct {
	Capability Capability
	State      State
}

func (e *RegistryNotReadyError) Error() string {
	return fmt.Sprintf("registry not ready (state %s): %s requested", e.State, e.Capability)
}

// CapabilityUnavailableError is returned for a capability that failed to load.
type CapabilityUnavailableError struct {
	Capability Capability
	Err        error
}

func (e *CapabilityUnavailableError) Error() string {
	return fmt.Sprintf("capability unavailable: %s: %v", e.Capability, e.Err)
}

func (e *CapabilityUnavailableError) Unwrap() error { return e.Err }

// ModelLoadError reports a load-time failure for one capability.
type ModelLoadError struct {
	Capability Capability
	Err        error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Capability, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// IsNotReady reports whether err indicates the registry has not finished loading.
func IsNotReady(err error) bool {
	var e *RegistryNotReadyError
	return errors.As(err, &e)
}

// IsCapabilityUnavailable reports whether err indicates a capability that failed to load.
func IsCapabilityUnavailable(err error) bool {
	var e *CapabilityUnavailableError
	return errors.As(err, &e)
}

// IsModelLoad reports whether err is a load-time failure.
func IsModelLoad(err error) bool {
	var e *ModelLoadError
	return errors.As(err, &e)
}

// errNoLoader marks a capability without a configured loader.
var errNoLoader = errors.New("no loader configured")
