// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import "image"

// Translate shifts the drawn content by (dx, dy) pixels so it stays aligned
// with a map that panned by the same amount. Content moved past the buffer
// edge is lost.
//
// The draw box moves with the content. Translate returns the parts of the
// old draw box that the moved content no longer covers; those pixels still
// hold stale data and the caller is expected to Clear them.
func (g *Graphics) Translate(dx, dy int) []image.Rectangle {
	old := g.drawBox
	if old.Empty() || (dx == 0 && dy == 0) {
		return nil
	}

	d := image.Pt(dx, dy)
	moved := old.Add(d).Intersect(g.img.Bounds())
	if !moved.Empty() {
		g.moveRows(moved, moved.Sub(d).Min)
		g.stats.MovedPixels += moved.Dx() * moved.Dy()
	}

	g.damage = g.damage.Union(old).Union(moved)
	g.drawBox = moved
	return Subtract(old, moved)
}

// moveRows copies the rectangle of size dst.Size() at src to dst within the
// same buffer, ordering rows so overlapping regions are not clobbered.
func (g *Graphics) moveRows(dst image.Rectangle, src image.Point) {
	pix := g.img.Pix
	n := dst.Dx() * 4
	h := dst.Dy()

	rowCopy := func(k int) {
		do := g.img.PixOffset(dst.Min.X, dst.Min.Y+k)
		so := g.img.PixOffset(src.X, src.Y+k)
		copy(pix[do:do+n], pix[so:so+n]) // copy handles same-row overlap
	}

	if dst.Min.Y > src.Y {
		for k := h - 1; k >= 0; k-- {
			rowCopy(k)
		}
		return
	}
	for k := 0; k < h; k++ {
		rowCopy(k)
	}
}

// Clear zeroes the pixels of r (intersected with the buffer), ignoring the
// clip. The draw box shrinks when r covers it entirely or covers one of its
// full sides.
func (g *Graphics) Clear(r image.Rectangle) {
	r = r.Intersect(g.img.Bounds())
	if r.Empty() {
		return
	}
	n := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := g.img.PixOffset(r.Min.X, y)
		clear(g.img.Pix[off : off+n])
	}
	g.stats.ClearedPixels += r.Dx() * r.Dy()
	g.damage = g.damage.Union(r)

	switch rest := Subtract(g.drawBox, r); len(rest) {
	case 0:
		g.drawBox = image.Rectangle{}
	case 1:
		g.drawBox = rest[0]
	}
}

// ClearAll clears the draw box, leaving an empty buffer.
func (g *Graphics) ClearAll() {
	g.Clear(g.drawBox)
	g.drawBox = image.Rectangle{}
}

// Subtract returns a minus b as at most four disjoint rectangles: full-width
// bands above and below b, then the left and right pieces beside it.
func Subtract(a, b image.Rectangle) []image.Rectangle {
	if a.Empty() {
		return nil
	}
	in := a.Intersect(b)
	if in.Empty() {
		return []image.Rectangle{a}
	}
	var out []image.Rectangle
	if in.Min.Y > a.Min.Y {
		out = append(out, image.Rect(a.Min.X, a.Min.Y, a.Max.X, in.Min.Y))
	}
	if in.Max.Y < a.Max.Y {
		out = append(out, image.Rect(a.Min.X, in.Max.Y, a.Max.X, a.Max.Y))
	}
	if in.Min.X > a.Min.X {
		out = append(out, image.Rect(a.Min.X, in.Min.Y, in.Min.X, in.Max.Y))
	}
	if in.Max.X < a.Max.X {
		out = append(out, image.Rect(in.Max.X, in.Min.Y, a.Max.X, in.Max.Y))
	}
	return out
}
