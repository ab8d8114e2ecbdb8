package geom

import (
	"image"
	"math"
)

// Rect is an axis-aligned rectangle in floating point coordinates.
// Min is inclusive and Max is exclusive for containment tests, matching
// image.Rectangle. The zero Rect is empty.
type Rect struct {
	Min, Max Point
}

// R is shorthand for Rect{Pt(x0, y0), Pt(x1, y1)}.
// The corners are not normalized; use RectFromPoints for that.
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{Min: Pt(x0, y0), Max: Pt(x1, y1)}
}

// RectFromPoints returns the smallest rect containing both points.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Min: Pt(math.Min(a.X, b.X), math.Min(a.Y, b.Y)),
		Max: Pt(math.Max(a.X, b.X), math.Max(a.Y, b.Y)),
	}
}

// FromImageRect converts an integer pixel rectangle.
func FromImageRect(r image.Rectangle) Rect {
	return R(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y))
}

// Dx returns the width.
func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }

// Dy returns the height.
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle contains no points.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Overlaps reports whether r and s share any point. Touching edges count as
// overlap so that a degenerate (zero width) track still intersects a view.
func (r Rect) Overlaps(s Rect) bool {
	return r.Min.X <= s.Max.X && s.Min.X <= r.Max.X &&
		r.Min.Y <= s.Max.Y && s.Min.Y <= r.Max.Y
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return r.Min.X <= p.X && p.X < r.Max.X &&
		r.Min.Y <= p.Y && p.Y < r.Max.Y
}

// Union returns the smallest rect containing r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{
		Min: Pt(math.Min(r.Min.X, s.Min.X), math.Min(r.Min.Y, s.Min.Y)),
		Max: Pt(math.Max(r.Max.X, s.Max.X), math.Max(r.Max.Y, s.Max.Y)),
	}
}

// Inset returns r shrunk by n on every side. A negative n grows it.
func (r Rect) Inset(n float64) Rect {
	return R(r.Min.X+n, r.Min.Y+n, r.Max.X-n, r.Max.Y-n)
}
