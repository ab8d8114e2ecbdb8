// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package viewbox

import (
	"image"
	"math"
	"testing"

	"github.com/gogpu/dotlayer/geom"
)

type fakeHost struct {
	size   image.Point
	zoom   float64
	origin geom.Point
}

func (h *fakeHost) Size() image.Point       { return h.size }
func (h *fakeHost) Zoom() float64           { return h.zoom }
func (h *fakeHost) PixelOrigin() geom.Point { return h.origin }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFirstUpdateReportsZoomChange(t *testing.T) {
	h := &fakeHost{size: image.Pt(800, 600), zoom: 10, origin: geom.Pt(1000, 2000)}
	v := New(h)
	ch := v.Update()
	if !ch.ZoomChanged || !ch.Resized {
		t.Fatalf("first Update = %+v, want zoom change and resize", ch)
	}
	if got := v.Calibrate(); got != image.Rect(0, 0, 800, 600) {
		t.Errorf("Calibrate() = %v", got)
	}
	if ch := v.Update(); ch.Moved() {
		t.Errorf("Update without host change = %+v, want no change", ch)
	}
}

func TestTransform(t *testing.T) {
	h := &fakeHost{size: image.Pt(100, 100), zoom: 2, origin: geom.Pt(40, 80)}
	v := New(h)
	v.Update()
	v.Calibrate()

	x, y := v.Transform(10, 20) // world (40, 80) at zoom 2
	if !near(x, 0) || !near(y, 0) {
		t.Errorf("Transform(10,20) = (%v,%v), want (0,0)", x, y)
	}
	x, y = v.Transform(12.5, 25)
	if !near(x, 10) || !near(y, 20) {
		t.Errorf("Transform(12.5,25) = (%v,%v), want (10,20)", x, y)
	}
	ux, uy := v.Untransform(10, 20)
	if !near(ux, 12.5) || !near(uy, 25) {
		t.Errorf("Untransform = (%v,%v)", ux, uy)
	}

	pb := v.PxBounds()
	want := geom.R(10, 20, 35, 45)
	if !near(pb.Min.X, want.Min.X) || !near(pb.Max.Y, want.Max.Y) {
		t.Errorf("PxBounds() = %+v, want %+v", pb, want)
	}
	if r := v.UntransformRect(v.Bounds()); !near(r.Min.X, 10) || !near(r.Max.X, 35) {
		t.Errorf("UntransformRect(Bounds) = %+v", r)
	}
}

func TestPanShift(t *testing.T) {
	h := &fakeHost{size: image.Pt(200, 100), zoom: 10, origin: geom.Pt(5000, 7000)}
	v := New(h)
	v.Update()
	v.Calibrate()
	bx, by := v.Transform(6, 7)

	// map dragged right by 5 and up by 5: origin moves the opposite way
	h.origin = geom.Pt(4995, 7005)
	ch := v.Update()
	if ch.ZoomChanged {
		t.Fatal("pan reported a zoom change")
	}
	if ch.Shift != image.Pt(5, -5) {
		t.Errorf("Shift = %v, want (5,-5)", ch.Shift)
	}
	// transform is stable until recalibrated
	if x, y := v.Transform(6, 7); !near(x, bx) || !near(y, by) {
		t.Error("transform changed before Calibrate")
	}

	v.Calibrate()
	ax, ay := v.Transform(6, 7)
	if !near(ax-bx, 5) || !near(ay-by, -5) {
		t.Errorf("after calibrate point moved by (%v,%v), want (5,-5)", ax-bx, ay-by)
	}
}

func TestFractionalPansDoNotDrift(t *testing.T) {
	h := &fakeHost{size: image.Pt(100, 100), zoom: 3, origin: geom.Pt(0, 0)}
	v := New(h)
	v.Update()
	v.Calibrate()
	x0, _ := v.Transform(1, 1)

	total := 0
	for range 10 {
		h.origin.X -= 0.4
		ch := v.Update()
		total += ch.Shift.X
		v.Calibrate()
	}
	x1, _ := v.Transform(1, 1)
	// content translated by total must match the new transform exactly
	if !near(x1-x0, float64(total)) {
		t.Errorf("transform moved %v, translated content moved %d", x1-x0, total)
	}
	// and stays within half a pixel of the true map position
	trueX := 1*math.Exp2(3) - h.origin.X
	if math.Abs(x1-trueX) > 0.5 {
		t.Errorf("drift: transform %v, map %v", x1, trueX)
	}
}

func TestZoomChange(t *testing.T) {
	h := &fakeHost{size: image.Pt(100, 100), zoom: 10, origin: geom.Pt(100, 100)}
	v := New(h)
	v.Update()
	v.Calibrate()

	h.zoom = 11
	h.origin = geom.Pt(250, 250)
	ch := v.Update()
	if !ch.ZoomChanged || ch.Shift != (image.Point{}) {
		t.Errorf("zoom Update = %+v", ch)
	}
	if v.ZoomLevel() != 11 {
		t.Errorf("ZoomLevel() = %d", v.ZoomLevel())
	}
	v.Calibrate()
	x, _ := v.Transform(250/math.Exp2(11), 0)
	if !near(x, 0) {
		t.Errorf("zoomed transform x = %v, want 0", x)
	}
}

func TestZoomLevelRounds(t *testing.T) {
	tests := []struct {
		zoom float64
		want int
	}{
		{10, 10},
		{10.4, 10},
		{10.5, 11},
		{0, 0},
	}
	for _, tt := range tests {
		h := &fakeHost{zoom: tt.zoom}
		v := New(h)
		v.Update()
		if got := v.ZoomLevel(); got != tt.want {
			t.Errorf("ZoomLevel(%v) = %d, want %d", tt.zoom, got, tt.want)
		}
	}
}
