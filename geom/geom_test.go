package geom

import (
	"image"
	"math"
	"testing"
)

func TestMatrixInvertRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"identity", Identity()},
		{"translate", Translate(10, -20)},
		{"scale", Scale(1024, 1024)},
		{"view", Translate(-300.5, -120).Multiply(Scale(4096, 4096))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := tt.m.Invert()
			for _, p := range []Point{{0, 0}, {1.5, -3}, {128, 64}} {
				got := inv.TransformPoint(tt.m.TransformPoint(p))
				if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
					t.Errorf("round trip of %v = %v", p, got)
				}
			}
		})
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	if got := Scale(0, 0).Invert(); !got.IsIdentity() {
		t.Errorf("Invert() of singular matrix = %+v, want identity", got)
	}
}

func TestTransformRectNormalizes(t *testing.T) {
	r := Scale(-1, 2).TransformRect(R(1, 1, 3, 4))
	want := R(-3, 2, -1, 8)
	if r != want {
		t.Errorf("TransformRect() = %+v, want %+v", r, want)
	}
}

func TestRectOverlaps(t *testing.T) {
	v := R(0, 0, 10, 10)
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"inside", R(2, 2, 3, 3), true},
		{"covers", R(-5, -5, 20, 20), true},
		{"touching edge", R(10, 0, 12, 5), true},
		{"left", R(-5, 0, -1, 5), false},
		{"below", R(0, 11, 5, 12), false},
		{"degenerate point inside", R(5, 5, 5, 5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Overlaps(tt.r); got != tt.want {
				t.Errorf("Overlaps(%+v) = %v, want %v", tt.r, got, tt.want)
			}
			if got := tt.r.Overlaps(v); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %+v", tt.r)
			}
		})
	}
}

func TestRectContainsHalfOpen(t *testing.T) {
	r := R(0, 0, 10, 10)
	if !r.Contains(Pt(0, 0)) {
		t.Error("min corner should be contained")
	}
	if r.Contains(Pt(10, 5)) {
		t.Error("max edge should not be contained")
	}
}

func TestFromImageRect(t *testing.T) {
	got := FromImageRect(image.Rect(1, 2, 3, 4))
	if got != R(1, 2, 3, 4) {
		t.Errorf("FromImageRect() = %+v", got)
	}
	if got.Dx() != 2 || got.Dy() != 2 {
		t.Errorf("Dx/Dy = %v/%v, want 2/2", got.Dx(), got.Dy())
	}
}

func TestRectInset(t *testing.T) {
	r := R(10, 20, 30, 60)
	if got, want := r.Inset(-2.5), R(7.5, 17.5, 32.5, 62.5); got != want {
		t.Errorf("Inset(-2.5) = %v, want %v", got, want)
	}
	if got := r.Inset(11); !got.Empty() {
		t.Errorf("Inset(11) = %v, want empty", got)
	}
}

func TestSegmentDistanceSquared(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)
	tests := []struct {
		p    Point
		want float64
	}{
		{Pt(5, 3), 9},
		{Pt(-3, 4), 25},
		{Pt(13, 4), 25},
		{Pt(7, 0), 0},
	}
	for _, tt := range tests {
		if got := SegmentDistanceSquared(tt.p, a, b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("SegmentDistanceSquared(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if got := SegmentDistanceSquared(Pt(3, 4), a, a); got != 25 {
		t.Errorf("degenerate segment distance = %v, want 25", got)
	}
}
