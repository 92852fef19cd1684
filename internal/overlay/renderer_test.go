package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
	"github.com/stretchr/testify/assert"
	"golang.org/x/image/draw"
)

var red = color.RGBA{R: 255, A: 255}

func whiteMonitor(rect geometry.Rect) *monitor.Monitor {
	img := image.NewRGBA(image.Rect(0, 0, rect.Width, rect.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &monitor.Monitor{Rect: rect, Name: "A", Image: img}
}

func testStyle() Style {
	s := DefaultStyle()
	s.Border = red
	s.ShowSize = false
	return s
}

func TestRenderMonitor_DimsOutsideSelection(t *testing.T) {
	m := whiteMonitor(geometry.Rect{Width: 100, Height: 100})
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))

	NewRenderer(testStyle()).RenderMonitor(dst, m, geometry.Rect{X: 10, Y: 10, Width: 40, Height: 40}, true)

	assert.InDelta(t, 127, int(dst.RGBAAt(5, 5).R), 2)
	assert.InDelta(t, 127, int(dst.RGBAAt(80, 80).R), 2)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, dst.RGBAAt(25, 25))
	assert.Equal(t, red, dst.RGBAAt(10, 10))
	assert.Equal(t, red, dst.RGBAAt(49, 30))
}

func TestRenderMonitor_InactiveDimsEverything(t *testing.T) {
	m := whiteMonitor(geometry.Rect{Width: 20, Height: 20})
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))

	NewRenderer(testStyle()).RenderMonitor(dst, m, geometry.Rect{}, false)

	for _, p := range []image.Point{{0, 0}, {10, 10}, {19, 19}} {
		assert.InDelta(t, 127, int(dst.RGBAAt(p.X, p.Y).G), 2)
	}
}

func TestRenderMonitor_SelectionOnOtherMonitor(t *testing.T) {
	m := whiteMonitor(geometry.Rect{X: 100, Width: 50, Height: 50})
	dst := image.NewRGBA(image.Rect(0, 0, 50, 50))

	NewRenderer(testStyle()).RenderMonitor(dst, m, geometry.Rect{X: 10, Y: 10, Width: 20, Height: 20}, true)

	assert.InDelta(t, 127, int(dst.RGBAAt(25, 25).R), 2)
}

func TestRenderMonitor_NilImage(t *testing.T) {
	m := &monitor.Monitor{Rect: geometry.Rect{Width: 10, Height: 10}}
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))

	NewRenderer(testStyle()).RenderMonitor(dst, m, geometry.Rect{X: 2, Y: 2, Width: 5, Height: 5}, true)

	assert.Equal(t, uint8(0), dst.RGBAAt(0, 0).R)
	assert.Equal(t, red, dst.RGBAAt(2, 2))
}

func TestMonitorPixels(t *testing.T) {
	tests := []struct {
		name    string
		monitor geometry.Rect
		frame   image.Rectangle
		global  geometry.Rect
		want    image.Rectangle
	}{
		{
			name:    "same scale",
			monitor: geometry.Rect{X: 1920, Width: 1920, Height: 1080},
			frame:   image.Rect(0, 0, 1920, 1080),
			global:  geometry.Rect{X: 2020, Y: 100, Width: 100, Height: 50},
			want:    image.Rect(100, 100, 200, 150),
		},
		{
			name:    "hidpi frame",
			monitor: geometry.Rect{X: 1920, Width: 1920, Height: 1080},
			frame:   image.Rect(0, 0, 3840, 2160),
			global:  geometry.Rect{X: 2020, Y: 100, Width: 100, Height: 50},
			want:    image.Rect(200, 200, 400, 300),
		},
		{
			name:    "clipped to frame",
			monitor: geometry.Rect{Width: 100, Height: 100},
			frame:   image.Rect(0, 0, 100, 100),
			global:  geometry.Rect{X: 90, Y: 90, Width: 40, Height: 40},
			want:    image.Rect(90, 90, 100, 100),
		},
		{
			name:    "empty",
			monitor: geometry.Rect{Width: 100, Height: 100},
			frame:   image.Rect(0, 0, 100, 100),
			global:  geometry.Rect{},
			want:    image.Rectangle{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonitorPixels(tt.monitor, tt.frame, tt.global))
		})
	}
}

func TestAround(t *testing.T) {
	outer := image.Rect(0, 0, 10, 10)

	assert.Equal(t, []image.Rectangle{outer}, around(outer, image.Rectangle{}))

	bands := around(outer, image.Rect(2, 2, 5, 5))
	area := 0
	for _, b := range bands {
		area += b.Dx() * b.Dy()
		assert.False(t, b.Overlaps(image.Rect(2, 2, 5, 5)))
	}
	assert.Equal(t, 100-9, area)

	assert.Empty(t, around(outer, outer))
}

func TestDrawSizeLabel(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 200, 100))
	sel := geometry.Rect{X: 0, Y: 0, Width: 640, Height: 480}

	assert.Equal(t, "640x480", SizeText(sel))

	// No room above the box, so the label goes inside it
	r := DrawSizeLabel(dst, image.Rect(10, 5, 150, 90), sel, DefaultLabelStyle())
	assert.Equal(t, 6, r.Min.Y)
	assert.Equal(t, 10, r.Min.X)
	assert.True(t, r.In(dst.Bounds()))

	r = DrawSizeLabel(dst, image.Rect(10, 60, 150, 90), sel, DefaultLabelStyle())
	assert.Equal(t, 60, r.Max.Y)

	// Pushed back inside the right edge
	r = DrawSizeLabel(dst, image.Rect(195, 60, 200, 90), sel, DefaultLabelStyle())
	assert.Equal(t, 200, r.Max.X)
}
