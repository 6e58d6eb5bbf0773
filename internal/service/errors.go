package service

import (
	"errors"
	"fmt"

	"assessml/internal/registry"
)

// InvalidRequestError reports input rejected before any model was invoked.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// InferenceFailure reports a model that could not be resolved or whose
// invocation failed.
type InferenceFailure struct {
	Capability registry.Capability
	RequestID  string
	Err        error
}

func (e *InferenceFailure) Error() string {
	return fmt.Sprintf("inference failed: %s (request %s): %v", e.Capability, e.RequestID, e.Err)
}

func (e *InferenceFailure) Unwrap() error { return e.Err }

// IsInvalidRequest reports whether err is an input validation failure.
func IsInvalidRequest(err error) bool {
	var e *InvalidRequestError
	return errors.As(err, &e)
}

// IsInferenceFailure reports whether err is a model resolution or invocation failure.
func IsInferenceFailure(err error) bool {
	var e *InferenceFailure
	return errors.As(err, &e)
}

func invalid(field, reason string) error {
	return &InvalidRequestError{Field: field, Reason: reason}
}
