package collection

import (
	"fmt"
	"image/color"

	"github.com/gogpu/dotlayer/activity"
	"github.com/gogpu/dotlayer/geom"
	"github.com/gogpu/dotlayer/raster"
)

// DotParams controls DrawDots.
type DotParams struct {
	Size      float64 // square side and circle radius, in pixels
	Alpha     uint8   // dot opacity
	Period    float64 // seconds of track time between dots
	TimeScale float64 // track seconds per wall-clock second
	Seconds   float64 // animation time

	// Color, if set, replaces the per-activity dot color and Alpha.
	Color color.Color
}

// DrawPaths draws the visible segments of every in-view activity with m
// mapping zoom-0 world pixels to buffer pixels, and returns the number of
// segments drawn.
//
// If region is non-nil only segments overlapping it (zoom-0 world pixels)
// are drawn; this is how newly exposed strips are filled after a pan.
func (c *Collection) DrawPaths(g *raster.Graphics, m geom.Matrix, region *geom.Rect) int {
	count := 0
	draw := func(x0, y0, x1, y1 float64) {
		sx0, sy0 := m.Apply(x0, y0)
		sx1, sy1 := m.Apply(x1, y1)
		g.DrawSegment(sx0, sy0, sx1, sy1)
	}
	c.current.ForEach(func(i int) {
		a := c.drawable(i)
		g.SetColor(a.Colors.Path)
		if a.Selected() {
			g.SetLineWidth(c.styles.SelectedPathWidth)
		} else {
			g.SetLineWidth(c.styles.NormalPathWidth)
		}
		mask := a.SegMask()
		if region != nil {
			mask = a.PartialSegMask(*region)
		}
		count += a.ForEachSegment(draw, mask)
	})
	return count
}

// DrawDots draws the dots of every in-view activity at animation time
// p.Seconds and returns the number of dots drawn. Selected activities get
// circles, the rest squares.
//
// region restricts drawing as in DrawPaths.
func (c *Collection) DrawDots(g *raster.Graphics, m geom.Matrix, p DotParams, region *geom.Rect) int {
	count := 0
	circle := func(x, y float64) {
		sx, sy := m.Apply(x, y)
		g.DrawCircle(sx, sy, p.Size)
	}
	square := func(x, y float64) {
		sx, sy := m.Apply(x, y)
		g.DrawSquare(sx, sy, p.Size)
	}
	c.current.ForEach(func(i int) {
		a := c.drawable(i)
		if p.Color != nil {
			g.SetColor(p.Color)
		} else {
			d := a.Colors.Dot
			g.SetColor(color.NRGBA{R: d.R, G: d.G, B: d.B, A: p.Alpha})
		}
		fn := square
		if a.Selected() {
			fn = circle
		}
		mask := a.SegMask()
		if region != nil {
			mask = a.PartialSegMask(*region)
		}
		count += a.ForEachDot(fn, p.Seconds, p.Period, p.TimeScale, mask)
	})
	return count
}

// drawable returns in-view activity i, panicking if its level-of-detail
// index for the current zoom is missing: drawing it would show stale
// geometry.
func (c *Collection) drawable(i int) *activity.Activity {
	a := c.array[i]
	if !a.HasIdxSet(c.zoom) || a.MaskZoom() != c.zoom {
		panic(fmt.Sprintf("collection: activity %d has no level-of-detail index for zoom %d", a.ID, c.zoom))
	}
	return a
}
