package geometry

import (
	"fmt"
	"image"
)

// Point is a position in logical coordinates
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a logical width/height pair
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect is an axis-aligned rectangle in logical coordinates
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// NewRect builds a rect from an origin and a size
func NewRect(origin Point, size Size) Rect {
	return Rect{X: origin.X, Y: origin.Y, Width: size.Width, Height: size.Height}
}

// FromPoints returns the normalized rect spanning two corner points.
// The drag direction does not matter.
func FromPoints(a, b Point) Rect {
	return Rect{
		X:      min(a.X, b.X),
		Y:      min(a.Y, b.Y),
		Width:  abs(b.X - a.X),
		Height: abs(b.Y - a.Y),
	}
}

// Right returns the exclusive right edge
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Origin returns the top-left corner
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Valid reports whether width and height are non-negative
func (r Rect) Valid() bool {
	return r.Width >= 0 && r.Height >= 0
}

// Empty reports whether the rect covers no area
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether inner lies fully inside r. Edges are inclusive,
// so every rect contains itself.
func (r Rect) Contains(inner Rect) bool {
	return inner.X >= r.X &&
		inner.Y >= r.Y &&
		inner.Right() <= r.Right() &&
		inner.Bottom() <= r.Bottom()
}

// ContainsPoint reports whether p lies inside r (right/bottom exclusive)
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ToLocal translates a global rect into the coordinate space of monitor.
// Only meaningful when monitor.Contains(r).
func (r Rect) ToLocal(monitor Rect) Rect {
	return Rect{
		X:      r.X - monitor.X,
		Y:      r.Y - monitor.Y,
		Width:  r.Width,
		Height: r.Height,
	}
}

// ToGlobal is the inverse of ToLocal
func (r Rect) ToGlobal(monitor Rect) Rect {
	return Rect{
		X:      r.X + monitor.X,
		Y:      r.Y + monitor.Y,
		Width:  r.Width,
		Height: r.Height,
	}
}

// Translate shifts the rect by (dx, dy)
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Scale multiplies every coordinate and extent by s, truncating toward zero
func (r Rect) Scale(s float64) Rect {
	return Rect{
		X:      int(float64(r.X) * s),
		Y:      int(float64(r.Y) * s),
		Width:  int(float64(r.Width) * s),
		Height: int(float64(r.Height) * s),
	}
}

// Intersect returns the overlap of r and o, or the zero rect when they are disjoint
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Rectangle converts to an image.Rectangle
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

// FromRectangle converts an image.Rectangle into a Rect
func FromRectangle(b image.Rectangle) Rect {
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
