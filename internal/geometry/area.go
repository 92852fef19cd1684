package geometry

// Area is the bounding box of every monitor rect folded into it.
// The zero Area is empty; the first Extend adopts the rect as-is.
type Area struct {
	Rect
	populated bool
}

// NewArea creates an area covering the given rects
func NewArea(rects ...Rect) Area {
	var a Area
	for _, r := range rects {
		a = a.Extend(r)
	}
	return a
}

// Extend returns the smallest area covering both a and r. It never shrinks.
func (a Area) Extend(r Rect) Area {
	if !a.populated {
		return Area{Rect: r, populated: true}
	}

	x := min(a.X, r.X)
	y := min(a.Y, r.Y)
	return Area{
		Rect: Rect{
			X:      x,
			Y:      y,
			Width:  max(a.Right(), r.Right()) - x,
			Height: max(a.Bottom(), r.Bottom()) - y,
		},
		populated: true,
	}
}

// IsEmpty reports whether nothing has been folded into the area yet
func (a Area) IsEmpty() bool {
	return !a.populated
}
