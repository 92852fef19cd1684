package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
	"golang.org/x/image/draw"
)

var (
	// ErrNoComposite implies the composite fallback was needed but no composite was captured
	ErrNoComposite = errors.New("no composite image available")

	// ErrEmptyCrop implies the selection does not overlap its source image
	ErrEmptyCrop = errors.New("selection does not overlap the captured image")
)

// Source identifies which buffer a crop was taken from
type Source int

const (
	SourceMonitor Source = iota
	SourceComposite
)

func (s Source) String() string {
	if s == SourceMonitor {
		return "monitor"
	}
	return "composite"
}

// Result is the cropped image and where it came from
type Result struct {
	Image   *image.RGBA
	Source  Source
	Monitor *monitor.Monitor
	// Pixels is the crop rectangle in the source buffer's pixel space
	Pixels geometry.Rect
}

// Resolve crops the finalized selection out of the best available buffer.
// The first monitor in registry order that fully contains the selection is
// cropped at native resolution; anything else comes from the composite,
// mapped into pixel space by scale.
func Resolve(sel geometry.Rect, reg *monitor.Registry, scale float64, composite image.Image) (*Result, error) {
	log := logger.WithComponent("resolver")

	if !sel.Valid() {
		return nil, fmt.Errorf("invalid selection %s", sel)
	}

	for _, m := range reg.Monitors() {
		if !m.Rect.Contains(sel) {
			continue
		}
		if m.Image == nil {
			log.Debug().
				Str("monitor", m.Name).
				Msg("Containing monitor has no captured image, trying next source")
			continue
		}

		bounds := m.Image.Bounds()
		local := sel.ToLocal(m.Rect).Translate(bounds.Min.X, bounds.Min.Y)
		img, err := crop(m.Image, local)
		if err != nil {
			return nil, fmt.Errorf("failed to crop monitor %s: %w", m.Name, err)
		}

		log.Debug().
			Str("monitor", m.Name).
			Str("selection", sel.String()).
			Str("pixels", local.String()).
			Msg("Cropped from monitor image")

		return &Result{Image: img, Source: SourceMonitor, Monitor: m, Pixels: local}, nil
	}

	if composite == nil {
		return nil, ErrNoComposite
	}

	area := reg.Area()
	bounds := composite.Bounds()
	pixels := sel.Translate(-area.X, -area.Y).Scale(scale).Translate(bounds.Min.X, bounds.Min.Y)

	img, err := crop(composite, pixels)
	if err != nil {
		return nil, fmt.Errorf("failed to crop composite: %w", err)
	}

	log.Debug().
		Str("selection", sel.String()).
		Float64("scale", scale).
		Str("pixels", pixels.String()).
		Msg("Cropped from composite image")

	return &Result{Image: img, Source: SourceComposite, Pixels: pixels}, nil
}

// crop copies r out of src into a new image anchored at the origin.
// r is clamped to the source bounds.
func crop(src image.Image, r geometry.Rect) (*image.RGBA, error) {
	clipped := r.Intersect(geometry.FromRectangle(src.Bounds()))
	if clipped.Empty() {
		return nil, ErrEmptyCrop
	}

	dst := image.NewRGBA(image.Rect(0, 0, clipped.Width, clipped.Height))
	draw.Draw(dst, dst.Bounds(), src, image.Pt(clipped.X, clipped.Y), draw.Src)
	return dst, nil
}
