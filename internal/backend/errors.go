package backend

import (
	"errors"
	"fmt"
)

// dependencyUnavailableError signals a runtime that is not compiled in or a
// backend that cannot be reached, as opposed to a bad request.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// StatusError is returned when an inference server answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inference server returned %d", e.Code)
	}
	return fmt.Sprintf("inference server returned %d: %s", e.Code, e.Body)
}
