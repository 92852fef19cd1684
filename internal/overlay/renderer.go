package overlay

import (
	"image"
	"image/color"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
	"golang.org/x/image/draw"
)

// Style controls how the selection overlay looks
type Style struct {
	// DimAlpha is the opacity of the shade over unselected pixels
	DimAlpha uint8
	Border   color.RGBA
	ShowSize bool
	Label    LabelStyle
}

// DefaultStyle returns the stock overlay look
func DefaultStyle() Style {
	return Style{
		DimAlpha: 128,
		Border:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
		ShowSize: true,
		Label:    DefaultLabelStyle(),
	}
}

// Renderer draws overlay frames for each monitor
type Renderer struct {
	style Style
}

// NewRenderer creates a renderer with the given style
func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// RenderMonitor draws the frame shown on m: its captured image shaded
// everywhere except the part of sel that falls on m. sel is global logical
// coordinates; active is false when no drag is in progress.
func (r *Renderer) RenderMonitor(dst *image.RGBA, m *monitor.Monitor, sel geometry.Rect, active bool) {
	bounds := dst.Bounds()
	if m.Image != nil {
		draw.NearestNeighbor.Scale(dst, bounds, m.Image, m.Image.Bounds(), draw.Src, nil)
	} else {
		draw.Draw(dst, bounds, image.Black, image.Point{}, draw.Src)
	}

	shade := image.NewUniform(color.Alpha{A: r.style.DimAlpha})
	if !active {
		draw.DrawMask(dst, bounds, image.Black, image.Point{}, shade, image.Point{}, draw.Over)
		return
	}

	local := MonitorPixels(m.Rect, bounds, sel.Intersect(m.Rect))
	for _, band := range around(bounds, local) {
		draw.DrawMask(dst, band, image.Black, image.Point{}, shade, image.Point{}, draw.Over)
	}

	if local.Empty() {
		return
	}
	drawBorder(dst, local, r.style.Border)

	// Only the monitor holding the selection's top-left corner carries the label
	if r.style.ShowSize && m.Rect.ContainsPoint(sel.Origin()) {
		DrawSizeLabel(dst, local, sel, r.style.Label)
	}
}

// MonitorPixels maps a global logical rect on monitor into the frame's pixel space
func MonitorPixels(monitor geometry.Rect, frame image.Rectangle, global geometry.Rect) image.Rectangle {
	if global.Empty() || monitor.Width == 0 || monitor.Height == 0 {
		return image.Rectangle{}
	}
	sx := float64(frame.Dx()) / float64(monitor.Width)
	sy := float64(frame.Dy()) / float64(monitor.Height)

	local := global.ToLocal(monitor)
	return image.Rect(
		frame.Min.X+int(float64(local.X)*sx),
		frame.Min.Y+int(float64(local.Y)*sy),
		frame.Min.X+int(float64(local.Right())*sx),
		frame.Min.Y+int(float64(local.Bottom())*sy),
	).Intersect(frame)
}

// around returns the parts of outer not covered by hole
func around(outer, hole image.Rectangle) []image.Rectangle {
	if hole.Empty() {
		return []image.Rectangle{outer}
	}
	bands := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, hole.Min.Y),
		image.Rect(outer.Min.X, hole.Max.Y, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, hole.Min.Y, hole.Min.X, hole.Max.Y),
		image.Rect(hole.Max.X, hole.Min.Y, outer.Max.X, hole.Max.Y),
	}
	out := bands[:0]
	for _, b := range bands {
		if !b.Empty() {
			out = append(out, b)
		}
	}
	return out
}

func drawBorder(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}
