package capture

import (
	"errors"
	"image"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
)

// ErrMonitorUnsupported is returned by backends that can only grab the whole desktop
var ErrMonitorUnsupported = errors.New("backend cannot capture individual monitors")

// Capturer defines the interface for screen capture backends
type Capturer interface {
	// Start initializes the capturer and any required resources
	Start() error

	// Stop releases resources
	Stop() error

	// Name returns a human-readable name for this capturer
	Name() string

	// IsAvailable checks if this capturer can be used in the current environment
	IsAvailable() bool

	// CaptureDesktop captures the composite image covering area.
	// Its pixel size may differ from the area's logical size.
	CaptureDesktop(area geometry.Rect) (*image.RGBA, error)

	// CaptureMonitor captures one monitor's rect at that monitor's own resolution
	CaptureMonitor(rect geometry.Rect) (*image.RGBA, error)
}
