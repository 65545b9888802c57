package device

import "errors"

// Sentinels shared by every Controller. Callers match them with errors.Is;
// the API maps each to an HTTP status.
var (
	ErrNotFound     = errors.New("device not found")
	ErrTimeout      = errors.New("operation timed out")
	ErrNotConnected = errors.New("controller not connected")
	// ErrUnsupported covers ops a unit does not build a frame for.
	ErrUnsupported = errors.New("operation not supported")
	ErrValidation  = errors.New("validation error")
)
