package geom

// Point represents a 2D point or vector.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// LengthSquared returns the squared length of the vector.
func (p Point) LengthSquared() float64 {
	return p.X*p.X + p.Y*p.Y
}

// Lerp performs linear interpolation between two points.
// t=0 returns p, t=1 returns q, intermediate values interpolate.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

// SegmentDistanceSquared returns the squared distance from p to the
// closed segment a-b.
func SegmentDistanceSquared(p, a, b Point) float64 {
	d := b.Sub(a)
	l2 := d.LengthSquared()
	if l2 == 0 {
		return p.Sub(a).LengthSquared()
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / l2
	switch {
	case t <= 0:
		return p.Sub(a).LengthSquared()
	case t >= 1:
		return p.Sub(b).LengthSquared()
	}
	return p.Sub(a.Lerp(b, t)).LengthSquared()
}
