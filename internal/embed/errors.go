package embed

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned for embedding calls made before the model has
// finished loading.
var ErrNotReady = errors.New("model not loaded")

// ValidationError reports a request that failed input validation. It is
// mapped to HTTP 400 at the handler boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ComputationError wraps a failure inside the embedding computation or
// response shaping. It is mapped to HTTP 500 at the handler boundary.
type ComputationError struct {
	Op  string
	Err error
}

func (e ComputationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e ComputationError) Unwrap() error { return e.Err }
