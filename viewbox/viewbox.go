// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package viewbox tracks the visible part of a slippy map and the transform
// from stored track coordinates to screen pixels.
//
// Track geometry is stored in world pixels at zoom 0 (a 256×256 Web Mercator
// square). At zoom z the world is 256·2^z pixels wide, and the host reports
// the world pixel at the top-left corner of the screen as its pixel origin.
//
// Drawn content is anchored to the origin captured by the last Calibrate.
// When the map pans, Update reports how far that content must be shifted to
// line up with the map again; after the caller shifts (or redraws) it,
// Calibrate makes the new position the reference.
package viewbox

import (
	"image"
	"math"

	"github.com/gogpu/dotlayer/geom"
)

// TileSize is the width of the world in pixels at zoom 0.
const TileSize = 256

// Host is the map state a ViewBox reads.
type Host interface {
	// Size returns the viewport size in screen pixels.
	Size() image.Point
	// Zoom returns the current zoom, possibly fractional during animations.
	Zoom() float64
	// PixelOrigin returns the world pixel (at the current zoom) shown at
	// the top-left corner of the viewport.
	PixelOrigin() geom.Point
}

// Change describes what Update observed since the last calibration.
type Change struct {
	// ZoomChanged is set when the zoom differs from the calibrated zoom.
	ZoomChanged bool
	// Resized is set when the viewport size changed.
	Resized bool
	// Shift is the pixel offset drawn content must move by to stay aligned.
	// It is zero when ZoomChanged is set; content must be redrawn instead.
	Shift image.Point
}

// Moved reports whether anything drawn is now out of place.
func (c Change) Moved() bool {
	return c.ZoomChanged || c.Resized || c.Shift != (image.Point{})
}

// ViewBox is the viewport state. It is not safe for concurrent use.
type ViewBox struct {
	host Host

	size   image.Point
	zoom   float64
	origin geom.Point

	calibrated bool
	calZoom    float64
	calOrigin  geom.Point
	shift      image.Point

	m, inv geom.Matrix
}

// New returns a ViewBox reading from host. Call Update and Calibrate before
// transforming anything.
func New(host Host) *ViewBox {
	return &ViewBox{host: host, m: geom.Identity(), inv: geom.Identity()}
}

// Update reads the host's current size, zoom and origin and reports the
// change relative to the last calibration.
func (v *ViewBox) Update() Change {
	size := v.host.Size()
	zoom := v.host.Zoom()
	origin := v.host.PixelOrigin()

	ch := Change{
		ZoomChanged: !v.calibrated || zoom != v.calZoom,
		Resized:     size != v.size,
	}
	v.size, v.zoom, v.origin = size, zoom, origin

	v.shift = image.Point{}
	if !ch.ZoomChanged {
		d := v.calOrigin.Sub(origin)
		v.shift = image.Pt(roundInt(d.X), roundInt(d.Y))
		ch.Shift = v.shift
	}
	return ch
}

// Calibrate makes the current map position the reference for Transform and
// returns the viewport rectangle in screen pixels.
//
// After a pan the reference moves by exactly the reported integer shift, so
// content that was translated and content drawn afterwards stay aligned even
// when the host's origin is fractional.
func (v *ViewBox) Calibrate() image.Rectangle {
	if v.calibrated && v.zoom == v.calZoom {
		v.calOrigin = v.calOrigin.Sub(geom.Pt(float64(v.shift.X), float64(v.shift.Y)))
	} else {
		v.calOrigin = v.origin
	}
	v.calZoom = v.zoom
	v.calibrated = true
	v.shift = image.Point{}

	s := v.Scale()
	v.m = geom.Translate(-v.calOrigin.X, -v.calOrigin.Y).Multiply(geom.Scale(s, s))
	v.inv = v.m.Invert()
	return v.Bounds()
}

// Calibrated reports whether Calibrate has been called.
func (v *ViewBox) Calibrated() bool {
	return v.calibrated
}

// Transform maps a zoom-0 world coordinate to a screen pixel coordinate.
func (v *ViewBox) Transform(x, y float64) (float64, float64) {
	return v.m.Apply(x, y)
}

// Untransform maps a screen pixel coordinate back to zoom-0 world pixels.
func (v *ViewBox) Untransform(x, y float64) (float64, float64) {
	return v.inv.Apply(x, y)
}

// UntransformRect maps a screen rectangle to zoom-0 world pixels.
func (v *ViewBox) UntransformRect(r image.Rectangle) geom.Rect {
	return v.inv.TransformRect(geom.FromImageRect(r))
}

// Matrix returns the calibrated world-to-screen transform.
func (v *ViewBox) Matrix() geom.Matrix {
	return v.m
}

// Bounds returns the viewport in screen pixels, anchored at (0, 0).
func (v *ViewBox) Bounds() image.Rectangle {
	return image.Rectangle{Max: v.size}
}

// Size returns the viewport size.
func (v *ViewBox) Size() image.Point {
	return v.size
}

// PxBounds returns the area currently shown, in zoom-0 world pixels.
// It reflects the latest Update, not the calibrated position.
func (v *ViewBox) PxBounds() geom.Rect {
	s := v.Scale()
	if s == 0 {
		return geom.Rect{}
	}
	return geom.R(
		v.origin.X/s, v.origin.Y/s,
		(v.origin.X+float64(v.size.X))/s, (v.origin.Y+float64(v.size.Y))/s,
	)
}

// Zoom returns the zoom seen by the latest Update.
func (v *ViewBox) Zoom() float64 {
	return v.zoom
}

// ZoomLevel returns the integer zoom used to key level-of-detail indexes.
func (v *ViewBox) ZoomLevel() int {
	return roundInt(v.zoom)
}

// Scale returns 2^zoom, the world pixels per zoom-0 pixel.
func (v *ViewBox) Scale() float64 {
	return math.Exp2(v.zoom)
}

func roundInt(f float64) int {
	return int(math.Floor(f + 0.5))
}
