// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"image"
	"math"
)

// maxCoord bounds segment endpoints so the integer line arithmetic cannot
// overflow. Segments reaching beyond it are cut there first.
const maxCoord = 1 << 28

// DrawSegment draws a line from (x0, y0) to (x1, y1) with the current color
// and line width.
//
// The endpoints are rounded first and the line between them is a fixed
// integer walk: the pixel at step k depends only on the rounded endpoints
// and k. Clipping to the clip rectangle skips whole steps and never moves an
// endpoint, so a segment touches the same pixels wherever the buffer sits
// relative to it, and pieces drawn through several clips match one drawn
// whole.
func (g *Graphics) DrawSegment(x0, y0, x1, y1 float64) {
	g.stats.Segments++
	if g.clip.Empty() || !finite(x0, y0, x1, y1) {
		return
	}

	lw := g.lineWidth
	off := (lw - 1) / 2
	// walk positions whose plotted square reaches the clip
	reach := image.Rect(
		g.clip.Min.X-lw+1+off, g.clip.Min.Y-lw+1+off,
		g.clip.Max.X+off, g.clip.Max.Y+off,
	)
	// rounding moves an endpoint by at most half a pixel
	if math.Max(x0, x1) < float64(reach.Min.X)-1 || math.Min(x0, x1) > float64(reach.Max.X)+1 ||
		math.Max(y0, y1) < float64(reach.Min.Y)-1 || math.Min(y0, y1) > float64(reach.Max.Y)+1 {
		return
	}
	var ok bool
	x0, y0, x1, y1, ok = clipSegment(x0, y0, x1, y1, -maxCoord, -maxCoord, maxCoord, maxCoord)
	if !ok {
		return
	}

	g.beginTouch()
	defer g.endTouch()

	plot := g.setPixel
	if lw > 1 {
		plot = func(x, y int) {
			g.fillRect(image.Rect(x-off, y-off, x-off+lw, y-off+lw))
		}
	}

	ix0, iy0 := round(x0), round(y0)
	ix1, iy1 := round(x1), round(y1)
	sx, sy := sign(ix1-ix0), sign(iy1-iy0)
	adx, ady := abs(ix1-ix0), abs(iy1-iy0)

	if adx >= ady {
		k0, k1 := stepRange(ix0, sx, adx, reach.Min.X, reach.Max.X)
		m0, m1 := stepRange(iy0, sy, ady, reach.Min.Y, reach.Max.Y)
		k0, k1 = minorLimits(k0, k1, m0, m1, adx, ady)
		for k := k0; k <= k1; k++ {
			plot(ix0+sx*k, iy0+sy*minorStep(k, adx, ady))
		}
		return
	}
	k0, k1 := stepRange(iy0, sy, ady, reach.Min.Y, reach.Max.Y)
	m0, m1 := stepRange(ix0, sx, adx, reach.Min.X, reach.Max.X)
	k0, k1 = minorLimits(k0, k1, m0, m1, ady, adx)
	for k := k0; k <= k1; k++ {
		plot(ix0+sx*minorStep(k, ady, adx), iy0+sy*k)
	}
}

// minorStep returns the minor axis offset at major step k of a line that
// advances n major and m minor steps in total: round(k*m/n), halves up.
func minorStep(k, n, m int) int {
	if n == 0 {
		return 0
	}
	return (2*k*m + n) / (2 * n)
}

// stepRange returns the steps t in [0, n] for which p0+s*t lies in
// [lo, hi). The range is empty when first > last.
func stepRange(p0, s, n, lo, hi int) (first, last int) {
	if s > 0 {
		first, last = lo-p0, hi-1-p0
	} else {
		first, last = p0-(hi-1), p0-lo
	}
	return max(first, 0), min(last, n)
}

// minorLimits narrows the major step range [k0, k1] to the steps whose
// minor offset lies in [m0, m1].
func minorLimits(k0, k1, m0, m1, n, m int) (int, int) {
	if m0 > m1 {
		return 1, 0
	}
	if m == 0 {
		return k0, k1
	}
	if m0 > 0 {
		// smallest k with 2km+n >= 2n*m0
		k0 = max(k0, (2*n*m0-n+2*m-1)/(2*m))
	}
	if m1 < m {
		// largest k with 2km+n < 2n*(m1+1)
		k1 = min(k1, (2*n*(m1+1)-n-1)/(2*m))
	}
	return k0, k1
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

// DrawCircle draws a filled disc of radius r centered at (x, y).
// A radius below one half draws the center pixel only.
func (g *Graphics) DrawCircle(x, y, r float64) {
	g.stats.Circles++

	g.beginTouch()
	defer g.endTouch()

	cx, cy := round(x), round(y)
	if r < 0.5 {
		g.fillRect(image.Rect(cx, cy, cx+1, cy+1))
		return
	}
	n := int(math.Ceil(r))
	// skip discs entirely outside the clip
	if !image.Rect(cx-n, cy-n, cx+n+1, cy+n+1).Overlaps(g.clip) {
		return
	}
	r2 := r * r
	for dy := -n; dy <= n; dy++ {
		fy := float64(dy)
		if fy*fy > r2 {
			continue
		}
		half := int(math.Sqrt(r2 - fy*fy))
		g.fillRect(image.Rect(cx-half, cy+dy, cx+half+1, cy+dy+1))
	}
}

// DrawSquare draws a filled square with side size centered at (x, y).
func (g *Graphics) DrawSquare(x, y, size float64) {
	g.stats.Squares++

	g.beginTouch()
	defer g.endTouch()

	side := max(1, round(size))
	x0 := round(x - size/2)
	y0 := round(y - size/2)
	g.fillRect(image.Rect(x0, y0, x0+side, y0+side))
}

// clipSegment clips a segment to [xmin, xmax] × [ymin, ymax] using the
// Liang–Barsky algorithm. ok is false if nothing remains.
func clipSegment(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx := x1 - x0
	dy := y1 - y0
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-dx, x0 - xmin},
		{dx, xmax - x0},
		{-dy, y0 - ymin},
		{dy, ymax - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	// untouched endpoints are returned exactly so they keep rounding to the
	// same pixel
	cx0, cy0, cx1, cy1 = x0, y0, x1, y1
	if t0 > 0 {
		cx0, cy0 = x0+t0*dx, y0+t0*dy
	}
	if t1 < 1 {
		cx1, cy1 = x0+t1*dx, y0+t1*dy
	}
	return cx0, cy0, cx1, cy1, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
