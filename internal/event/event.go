// Package event defines the closed set of input and output events delivered
// to a capture session, and the capability interfaces used to dispatch them.
package event

import (
	"fmt"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
)

// Event is one of PointerDown, PointerMove, PointerUp, Key or OutputGeometry
type Event interface {
	event()
}

// PointerDown is a primary button press. Position is local to Output.
type PointerDown struct {
	Output   monitor.OutputID
	Position geometry.Point
}

// PointerMove is pointer motion. Position is local to Output.
type PointerMove struct {
	Output   monitor.OutputID
	Position geometry.Point
}

// PointerUp is a primary button release
type PointerUp struct {
	Output monitor.OutputID
}

// Key is a key press, reported as an X keysym
type Key struct {
	Output monitor.OutputID
	Keysym uint32
}

// OutputGeometry reports an output's geometry after startup
type OutputGeometry struct {
	Info monitor.OutputInfo
}

func (PointerDown) event()    {}
func (PointerMove) event()    {}
func (PointerUp) event()      {}
func (Key) event()            {}
func (OutputGeometry) event() {}

func (e PointerDown) String() string {
	return fmt.Sprintf("pointer-down(%d,%d)@%d", e.Position.X, e.Position.Y, e.Output)
}

func (e PointerMove) String() string {
	return fmt.Sprintf("pointer-move(%d,%d)@%d", e.Position.X, e.Position.Y, e.Output)
}

func (e PointerUp) String() string {
	return fmt.Sprintf("pointer-up@%d", e.Output)
}

func (e Key) String() string {
	return fmt.Sprintf("key(%#x)@%d", e.Keysym, e.Output)
}

func (e OutputGeometry) String() string {
	return fmt.Sprintf("output-geometry(%d %s)", e.Info.ID, e.Info.Name)
}

// PointerHandler handles pointer events
type PointerHandler interface {
	PointerDown(PointerDown)
	PointerMove(PointerMove)
	PointerUp(PointerUp)
}

// KeyboardHandler handles key presses
type KeyboardHandler interface {
	Key(Key)
}

// OutputHandler handles output geometry updates
type OutputHandler interface {
	OutputGeometry(OutputGeometry)
}

// Dispatch delivers ev to h if h has the matching capability.
// It reports whether the event was handled.
func Dispatch(h interface{}, ev Event) bool {
	switch e := ev.(type) {
	case PointerDown:
		if ph, ok := h.(PointerHandler); ok {
			ph.PointerDown(e)
			return true
		}
	case PointerMove:
		if ph, ok := h.(PointerHandler); ok {
			ph.PointerMove(e)
			return true
		}
	case PointerUp:
		if ph, ok := h.(PointerHandler); ok {
			ph.PointerUp(e)
			return true
		}
	case Key:
		if kh, ok := h.(KeyboardHandler); ok {
			kh.Key(e)
			return true
		}
	case OutputGeometry:
		if oh, ok := h.(OutputHandler); ok {
			oh.OutputGeometry(e)
			return true
		}
	}
	return false
}
