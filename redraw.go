package dotlayer

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/dotlayer/collection"
	"github.com/gogpu/dotlayer/metrics"
	"github.com/gogpu/dotlayer/raster"
	"github.com/gogpu/dotlayer/surface"
)

// Debug border colors.
var (
	drawBoxColor = color.RGBA{R: 0xff, A: 0xff}
	exposedColor = color.RGBA{G: 0xc0, A: 0xff}
)

// RedrawStats describes the latest viewport redraw.
type RedrawStats struct {
	// Kind is metrics.RedrawFull, metrics.RedrawPartial or
	// metrics.RedrawSkipped.
	Kind string
	// Shift is the pixel offset applied to existing content by a partial
	// redraw.
	Shift image.Point
	// Exposed are the screen strips a partial redraw had to fill.
	Exposed []image.Rectangle
	// Segments and Dots count the primitives drawn.
	Segments, Dots int
	// Cleared counts path buffer pixels that were zeroed.
	Cleared int
	// Context is the in-view update that preceded drawing.
	Context collection.Stats
}

// LastRedraw returns statistics of the latest redraw.
func (l *Layer) LastRedraw() RedrawStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Redraw brings the drawing in line with the host map. Nothing happens if
// the map neither moved nor zoomed, unless force is set. A pure pan shifts
// the existing pixels and draws only the newly exposed strips; a zoom
// change, resize or force repaints everything.
//
// A Redraw that arrives while another is running waits for it to finish.
func (l *Layer) Redraw(ctx context.Context, force bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.redrawLocked(ctx, force)
}

func (l *Layer) redrawLocked(ctx context.Context, force bool) error {
	if !l.ready {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("dotlayer: redraw: %w", err)
	}

	ch := l.vb.Update()
	size := l.vb.Size()
	if size.X <= 0 || size.Y <= 0 {
		Logger().Debug("dotlayer: viewport not sized, skipping redraw", "width", size.X, "height", size.Y)
		return nil
	}
	if !force && !ch.Moved() {
		l.last = RedrawStats{Kind: metrics.RedrawSkipped}
		l.opts.metrics.ObserveRedraw(metrics.RedrawSkipped, 0, 0)
		return nil
	}
	if ch.Resized {
		if err := l.resizeLocked(size); err != nil {
			return err
		}
	}

	full := force || ch.ZoomChanged || ch.Resized || l.opts.forceFull
	st := RedrawStats{Kind: metrics.RedrawPartial, Shift: ch.Shift}
	l.paths.ResetStats()
	if full {
		st.Kind = metrics.RedrawFull
		st.Shift = image.Point{}
		l.vb.Calibrate()
		l.paths.ClearAll()
		l.dots.ClearAll()
		l.coll.ResetSegMasks()
		if ch.ZoomChanged {
			l.settings = dotSettings(l.params, l.vb.Zoom())
		}
	} else {
		for _, g := range []*raster.Graphics{l.paths, l.dots} {
			for _, r := range g.Translate(ch.Shift.X, ch.Shift.Y) {
				g.Clear(r)
			}
		}
		screen := l.vb.Calibrate()
		st.Exposed = raster.Subtract(screen, screen.Add(ch.Shift))
	}

	// Level-of-detail builds run to completion once started; the context
	// was checked above, before any state changed.
	view := l.vb.PxBounds().Inset(-float64(l.pathPad()) / l.vb.Scale())
	cst, err := l.coll.UpdateContext(context.WithoutCancel(ctx), view, l.vb.ZoomLevel())
	if err != nil {
		return fmt.Errorf("dotlayer: redraw: %w", err)
	}
	st.Context = cst
	l.opts.metrics.ObserveContext(cst.InView, cst.Built)

	if l.params.ShowPaths {
		st.Segments = l.drawPathsLocked(full, st.Exposed)
	}
	if l.paused {
		st.Dots = l.drawDotsLocked(l.clock.Seconds())
		l.lastDots = st.Dots
	}
	st.Cleared = l.paths.Stats().ClearedPixels

	l.flushLocked(l.paths, l.pathSurf, full)
	l.flushLocked(l.dots, l.dotSurf, full)
	if l.debug != nil {
		l.drawBordersLocked(st.Exposed)
		l.flushLocked(l.debug, l.debugSurf, true)
	}

	l.last = st
	l.opts.metrics.ObserveRedraw(st.Kind, st.Segments, st.Dots)
	Logger().Debug("dotlayer: redraw",
		"kind", st.Kind, "shift", st.Shift, "zoom", l.vb.ZoomLevel(),
		"in_view", cst.InView, "segments", st.Segments, "dots", st.Dots)
	return nil
}

// pathPad is how far, in screen pixels, a segment may lie outside a
// rectangle and still paint pixels inside it: the widest stroke plus the
// rounding of its endpoints.
func (l *Layer) pathPad() int {
	return max(l.params.PathWidth, l.params.SelectedPathWidth) + 1
}

// drawPathsLocked draws every visible segment on a full redraw, or only the
// segments reaching into the exposed strips after a pan. Strip lookups are
// padded by pathPad so lines just outside a strip still paint their edge
// inside it.
func (l *Layer) drawPathsLocked(full bool, exposed []image.Rectangle) int {
	m := l.vb.Matrix()
	if full {
		return l.coll.DrawPaths(l.paths, m, nil)
	}
	pad := l.pathPad()
	n := 0
	for _, r := range exposed {
		region := l.vb.UntransformRect(r.Inset(-pad))
		l.paths.SetClip(r)
		n += l.coll.DrawPaths(l.paths, m, &region)
	}
	l.paths.ResetClip()
	return n
}

// resizeLocked rebinds the pixel buffers and resizes their surfaces.
func (l *Layer) resizeLocked(size image.Point) error {
	l.paths.Bind(newBuffer(size))
	l.dots.Bind(newBuffer(size))
	if l.debug != nil {
		l.debug.Bind(newBuffer(size))
	}
	for _, s := range []surface.Surface{l.pathSurf, l.dotSurf, l.debugSurf} {
		if s == nil {
			continue
		}
		if err := s.Resize(size); err != nil {
			return fmt.Errorf("dotlayer: resize: %w", err)
		}
	}
	Logger().Debug("dotlayer: resized", "width", size.X, "height", size.Y)
	return nil
}

// flushLocked composites g onto s. Failures skip the frame; the damage is
// kept so the next flush retries it.
func (l *Layer) flushLocked(g *raster.Graphics, s surface.Surface, full bool) {
	if err := g.Flush(s, full); err != nil {
		Logger().Warn("dotlayer: composite failed", "err", err)
		return
	}
	if err := s.Flush(); err != nil {
		Logger().Warn("dotlayer: surface flush failed", "err", err)
	}
}

func (l *Layer) drawBordersLocked(exposed []image.Rectangle) {
	g := l.debug
	g.ClearAll()
	g.SetLineWidth(1)
	g.SetColor(drawBoxColor)
	outline(g, l.paths.DrawBox())
	g.SetColor(exposedColor)
	for _, r := range exposed {
		outline(g, r)
	}
}

func outline(g *raster.Graphics, r image.Rectangle) {
	if r.Empty() {
		return
	}
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X-1), float64(r.Max.Y-1)
	g.DrawSegment(x0, y0, x1, y0)
	g.DrawSegment(x1, y0, x1, y1)
	g.DrawSegment(x1, y1, x0, y1)
	g.DrawSegment(x0, y1, x0, y0)
}
