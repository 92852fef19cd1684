package monitor

import (
	"fmt"
	"image"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/logger"
)

// OutputID is the opaque handle the display server uses for an output
type OutputID uint32

// OutputInfo is what output enumeration reports for one display.
// A nil size or position means the server did not provide it.
type OutputInfo struct {
	ID              OutputID        `json:"id"`
	Name            string          `json:"name"`
	LogicalSize     *geometry.Size  `json:"logical_size,omitempty"`
	LogicalPosition *geometry.Point `json:"logical_position,omitempty"`
}

// Enumerator lists the display outputs currently connected
type Enumerator interface {
	Outputs() ([]OutputInfo, error)
}

// Monitor is one connected display and its captured image
type Monitor struct {
	Rect  geometry.Rect
	ID    OutputID
	Name  string
	Image *image.RGBA
}

// Registry owns every monitor for the lifetime of a session.
// Monitors keep enumeration order; the area is frozen once built.
type Registry struct {
	monitors []*Monitor
	area     geometry.Area
}

// NewRegistry builds the registry and its area from enumerated outputs.
// Any output without a logical size or position is fatal.
func NewRegistry(outputs []OutputInfo) (*Registry, error) {
	if len(outputs) == 0 {
		return nil, ErrNoMonitors
	}

	log := logger.WithComponent("monitor")
	r := &Registry{monitors: make([]*Monitor, 0, len(outputs))}

	for _, out := range outputs {
		if out.LogicalSize == nil {
			return nil, &MissingGeometryError{Output: out.ID, Name: out.Name, Field: "size"}
		}
		if out.LogicalPosition == nil {
			return nil, &MissingGeometryError{Output: out.ID, Name: out.Name, Field: "position"}
		}

		rect := geometry.NewRect(*out.LogicalPosition, *out.LogicalSize)
		r.area = r.area.Extend(rect)
		r.monitors = append(r.monitors, &Monitor{
			Rect: rect,
			ID:   out.ID,
			Name: out.Name,
		})

		log.Debug().
			Uint32("output_id", uint32(out.ID)).
			Str("name", out.Name).
			Str("rect", rect.String()).
			Msg("Registered monitor")
	}

	log.Info().
		Int("monitors", len(r.monitors)).
		Str("area", r.area.String()).
		Msg("Monitor registry built")

	return r, nil
}

// Load enumerates outputs and builds a registry from them
func Load(e Enumerator) (*Registry, error) {
	outputs, err := e.Outputs()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate outputs: %w", err)
	}
	return NewRegistry(outputs)
}

// Area returns the bounding box of all monitors
func (r *Registry) Area() geometry.Area {
	return r.area
}

// Monitors returns the monitors in enumeration order
func (r *Registry) Monitors() []*Monitor {
	return r.monitors
}

// Len returns the number of monitors
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.monitors)
}

// Get returns the monitor for an output ID
func (r *Registry) Get(id OutputID) (*Monitor, bool) {
	for _, m := range r.monitors {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// SetImage stores the captured buffer for an output
func (r *Registry) SetImage(id OutputID, img *image.RGBA) error {
	m, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownOutput, id)
	}
	m.Image = img
	return nil
}

// FirstContaining returns the first monitor, in enumeration order, whose rect
// fully contains sel. Overlapping monitors resolve to the earlier one.
func (r *Registry) FirstContaining(sel geometry.Rect) (*Monitor, bool) {
	for _, m := range r.monitors {
		if m.Rect.Contains(sel) {
			return m, true
		}
	}
	return nil, false
}

// ScaleFactor returns composite pixel width divided by the area's logical width.
// An empty registry is rejected before any division happens.
func (r *Registry) ScaleFactor(compositeWidth int) (float64, error) {
	if r.Len() == 0 || r.area.IsEmpty() {
		return 0, ErrNoMonitors
	}
	if r.area.Width <= 0 {
		return 0, fmt.Errorf("%w: area %s", ErrNoMonitors, r.area.String())
	}
	if compositeWidth <= 0 {
		return 0, ErrInvalidComposite
	}
	return float64(compositeWidth) / float64(r.area.Width), nil
}
