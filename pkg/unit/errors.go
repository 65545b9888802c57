package unit

import (
	"errors"
	"fmt"
)

var (
	// ErrBadRecord indicates a persisted unit record is truncated or corrupt
	ErrBadRecord = errors.New("bad unit record")

	// ErrReadOnlyField indicates a write to a field clients may not set
	ErrReadOnlyField = errors.New("field is read-only")

	// ErrUnknownField indicates a write to a field the unit does not have
	ErrUnknownField = errors.New("unknown field")

	// ErrBadValue indicates a field value of the wrong type or out of range
	ErrBadValue = errors.New("bad field value")
)

// FormatVersionError is returned when a persisted record carries a format
// version this build cannot read.
type FormatVersionError struct {
	Version  uint16
	TypeName string
}

func (e *FormatVersionError) Error() string {
	return fmt.Sprintf("unknown format version %d for %s", e.Version, e.TypeName)
}
