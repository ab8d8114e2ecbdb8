// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raster is a small software rasterizer that writes directly into an
// *image.RGBA.
//
// It draws three primitives, line segments, filled circles and filled
// squares, and keeps track of two rectangles:
//
//   - the draw box: the extent of everything drawn since the buffer was last
//     cleared. Panning moves it with the content (Translate); clearing it
//     empties the buffer.
//   - the damage: every pixel changed since the last Flush. Flush composites
//     only this region onto a display surface.
//
// Coordinates are rounded half-up to integer pixel indices, so segments that
// share an endpoint meet on the same pixel.
//
// # Thread Safety
//
// Graphics is NOT safe for concurrent use. The owner serializes all calls.
package raster

import (
	"image"
	"image/color"
	"math"
)

// Compositor receives the pixels of a flushed region.
// surface.Surface satisfies this interface.
type Compositor interface {
	Composite(src *image.RGBA, r image.Rectangle) error
}

// Stats counts rasterizer work since the last ResetStats.
type Stats struct {
	Segments      int
	Circles       int
	Squares       int
	ClearedPixels int
	MovedPixels   int
}

// Graphics rasterizes primitives into a bound pixel buffer.
type Graphics struct {
	img       *image.RGBA
	color     color.RGBA // premultiplied
	lineWidth int
	clip      image.Rectangle

	drawBox image.Rectangle
	damage  image.Rectangle

	// bounding box of pixels touched by the primitive being drawn
	touched image.Rectangle

	stats Stats
}

// New creates a Graphics bound to img. A nil img binds an empty buffer.
func New(img *image.RGBA) *Graphics {
	g := &Graphics{
		color:     color.RGBA{A: 255},
		lineWidth: 1,
	}
	g.Bind(img)
	return g
}

// Bind switches to a new buffer (after a resize, for example).
// The buffer is assumed to be blank; draw box and damage are reset and the
// clip is set to the full buffer.
func (g *Graphics) Bind(img *image.RGBA) {
	if img == nil {
		img = image.NewRGBA(image.Rectangle{})
	}
	g.img = img
	g.clip = img.Bounds()
	g.drawBox = image.Rectangle{}
	g.damage = image.Rectangle{}
}

// Image returns the bound buffer.
func (g *Graphics) Image() *image.RGBA {
	return g.img
}

// Bounds returns the bounds of the bound buffer.
func (g *Graphics) Bounds() image.Rectangle {
	return g.img.Bounds()
}

// SetColor sets the color for subsequent primitives. Pixels are written
// without blending.
func (g *Graphics) SetColor(c color.Color) {
	g.color = color.RGBAModel.Convert(c).(color.RGBA)
}

// Color returns the current premultiplied draw color.
func (g *Graphics) Color() color.RGBA {
	return g.color
}

// SetLineWidth sets the segment width in pixels. Values below 1 mean 1.
func (g *Graphics) SetLineWidth(w int) {
	g.lineWidth = max(1, w)
}

// LineWidth returns the segment width in pixels.
func (g *Graphics) LineWidth() int {
	return g.lineWidth
}

// SetClip restricts subsequent writes to r (intersected with the buffer).
func (g *Graphics) SetClip(r image.Rectangle) {
	g.clip = r.Intersect(g.img.Bounds())
}

// ResetClip removes the clip restriction.
func (g *Graphics) ResetClip() {
	g.clip = g.img.Bounds()
}

// Clip returns the active clip rectangle.
func (g *Graphics) Clip() image.Rectangle {
	return g.clip
}

// DrawBox returns the extent of content drawn since the last full clear.
func (g *Graphics) DrawBox() image.Rectangle {
	return g.drawBox
}

// Damage returns the region changed since the last Flush.
func (g *Graphics) Damage() image.Rectangle {
	return g.damage
}

// Stats returns the work counters.
func (g *Graphics) Stats() Stats {
	return g.stats
}

// ResetStats zeroes the work counters.
func (g *Graphics) ResetStats() {
	g.stats = Stats{}
}

// Flush composites the damaged region, or the whole buffer when full is
// set, onto dst and resets the damage on success.
func (g *Graphics) Flush(dst Compositor, full bool) error {
	r := g.damage
	if full {
		r = g.img.Bounds()
	}
	if r.Empty() {
		return nil
	}
	if err := dst.Composite(g.img, r); err != nil {
		return err
	}
	g.damage = image.Rectangle{}
	return nil
}

// round maps a coordinate to its pixel index.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// beginTouch starts tracking the pixels written by one primitive.
func (g *Graphics) beginTouch() {
	g.touched = image.Rectangle{}
}

// endTouch merges the pixels written by the primitive into draw box and damage.
func (g *Graphics) endTouch() {
	if g.touched.Empty() {
		return
	}
	g.drawBox = g.drawBox.Union(g.touched)
	g.damage = g.damage.Union(g.touched)
}

// fillRect writes the current color into r ∩ clip.
func (g *Graphics) fillRect(r image.Rectangle) {
	r = r.Intersect(g.clip)
	if r.Empty() {
		return
	}
	g.touched = g.touched.Union(r)

	c := g.color
	pix := g.img.Pix
	stride := g.img.Stride
	b := g.img.Rect

	first := (r.Min.Y-b.Min.Y)*stride + (r.Min.X-b.Min.X)*4
	row := pix[first : first+r.Dx()*4]
	for i := 0; i < len(row); i += 4 {
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		off := (y-b.Min.Y)*stride + (r.Min.X-b.Min.X)*4
		copy(pix[off:off+len(row)], row)
	}
}

// setPixel writes one pixel if it is inside the clip.
func (g *Graphics) setPixel(x, y int) {
	if !(image.Point{X: x, Y: y}).In(g.clip) {
		return
	}
	g.touched = g.touched.Union(image.Rect(x, y, x+1, y+1))
	i := g.img.PixOffset(x, y)
	s := g.img.Pix[i : i+4 : i+4]
	s[0] = g.color.R
	s[1] = g.color.G
	s[2] = g.color.B
	s[3] = g.color.A
}
