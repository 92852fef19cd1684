package monitor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMonitors implies no display outputs were found, so there is no area
	// and no scale factor can be derived.
	ErrNoMonitors = errors.New("no monitors detected")

	// ErrMissingGeometry implies an output did not report its logical size or position.
	ErrMissingGeometry = errors.New("output geometry unavailable")

	// ErrInvalidComposite implies the composite image has no usable width.
	ErrInvalidComposite = errors.New("composite image has zero width")

	// ErrUnknownOutput implies an output ID is not present in the registry.
	ErrUnknownOutput = errors.New("unknown output")
)

// MissingGeometryError names the output and the field it failed to report
type MissingGeometryError struct {
	Output OutputID
	Name   string
	Field  string
}

func (e *MissingGeometryError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("#%d", e.Output)
	}
	return fmt.Sprintf("can't determine %s of output %s", e.Field, name)
}

// Unwrap lets errors.Is match ErrMissingGeometry
func (e *MissingGeometryError) Unwrap() error {
	return ErrMissingGeometry
}
