package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelStyle controls the selection size label
type LabelStyle struct {
	Text       color.RGBA
	Background color.RGBA
	Padding    int
}

// DefaultLabelStyle returns white text on a translucent black box
func DefaultLabelStyle() LabelStyle {
	return LabelStyle{
		Text:       color.RGBA{255, 255, 255, 255},
		Background: color.RGBA{0, 0, 0, 180},
		Padding:    3,
	}
}

// SizeText formats a selection's logical size the way the label shows it
func SizeText(sel geometry.Rect) string {
	return fmt.Sprintf("%dx%d", sel.Width, sel.Height)
}

// DrawSizeLabel draws the size of sel next to the pixel rect box. The label
// sits just above the box, or inside its top edge when there is no room.
// Returns the rect the label occupies.
func DrawSizeLabel(dst *image.RGBA, box image.Rectangle, sel geometry.Rect, style LabelStyle) image.Rectangle {
	face := basicfont.Face7x13
	text := SizeText(sel)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(style.Text),
		Face: face,
	}
	textWidthPx := d.MeasureString(text).Ceil()
	textHeightPx := face.Height

	w := textWidthPx + style.Padding*2
	h := textHeightPx + style.Padding*2

	x := box.Min.X
	y := box.Min.Y - h
	if y < dst.Bounds().Min.Y {
		y = box.Min.Y + 1
	}
	if x+w > dst.Bounds().Max.X {
		x = dst.Bounds().Max.X - w
	}
	x = max(x, dst.Bounds().Min.X)

	bg := image.Rect(x, y, x+w, y+h).Intersect(dst.Bounds())
	draw.Draw(dst, bg, image.NewUniform(style.Background), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I(x + style.Padding),
		Y: fixed.I(y + style.Padding + face.Ascent),
	}
	d.DrawString(text)

	return bg
}
