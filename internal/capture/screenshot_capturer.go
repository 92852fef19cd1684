package capture

import (
	"fmt"
	"image"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/kbinani/screenshot"
)

// ScreenshotCapturer uses github.com/kbinani/screenshot
type ScreenshotCapturer struct{}

// NewScreenshotCapturer creates a capturer backed by kbinani/screenshot
func NewScreenshotCapturer() (*ScreenshotCapturer, error) {
	return &ScreenshotCapturer{}, nil
}

// Start verifies at least one display is active
func (c *ScreenshotCapturer) Start() error {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return fmt.Errorf("no active displays found")
	}
	logger.WithComponent("screenshot-capturer").Debug().
		Int("displays", n).
		Msg("Screenshot capturer ready")
	return nil
}

// Stop is a no-op
func (c *ScreenshotCapturer) Stop() error {
	return nil
}

// Name returns the capturer name
func (c *ScreenshotCapturer) Name() string {
	return "screenshot"
}

// IsAvailable reports whether any display is active
func (c *ScreenshotCapturer) IsAvailable() bool {
	return screenshot.NumActiveDisplays() > 0
}

// CaptureDesktop captures the union of all displays
func (c *ScreenshotCapturer) CaptureDesktop(area geometry.Rect) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(area.Rectangle())
	if err != nil {
		return nil, fmt.Errorf("failed to capture desktop: %w", err)
	}
	return img, nil
}

// CaptureMonitor captures one display's bounds
func (c *ScreenshotCapturer) CaptureMonitor(rect geometry.Rect) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(rect.Rectangle())
	if err != nil {
		return nil, fmt.Errorf("failed to capture monitor %s: %w", rect, err)
	}
	return img, nil
}
