package main

import (
	"fmt"
	"image"
	"math"
	"slices"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/dotlayer"
	"github.com/gogpu/dotlayer/activity"
	"github.com/gogpu/dotlayer/geom"
	"github.com/gogpu/dotlayer/surface"
)

// Surface modes selected by DOTVIEW_SURFACE.
const (
	surfaceImage   = "image"
	surfaceTexture = "texture"
)

// rgbaDevice reports the pixel layout ebiten images take from WritePixels.
type rgbaDevice struct{}

func (rgbaDevice) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// frameTexture is the upload target of a TextureSurface. It keeps the
// latest upload until the game loop copies it into an ebiten image.
type frameTexture struct {
	mu    sync.Mutex
	pix   []byte
	fresh bool
}

var _ gpucontext.TextureUpdater = (*frameTexture)(nil)

func (t *frameTexture) UpdateData(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pix = append(t.pix[:0], data...)
	t.fresh = true
	return nil
}

// writeTo copies the latest upload into dst when it is new, or always when
// force is set. Uploads of another size are skipped.
func (t *frameTexture) writeTo(dst *ebiten.Image, force bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.fresh && !force {
		return
	}
	b := dst.Bounds()
	if len(t.pix) != 4*b.Dx()*b.Dy() {
		return
	}
	dst.WritePixels(t.pix)
	t.fresh = false
}

// screenSurface is a surface the layer writes from its own goroutines and
// the game loop draws as an ebiten image. It is backed either by an
// ImageSurface read back on present, or by a TextureSurface whose uploads
// land in a frameTexture.
type screenSurface struct {
	pane dotlayer.Pane

	mu   sync.Mutex
	dst  surface.Surface
	img  *surface.ImageSurface
	up   *frameTexture
	tex  *ebiten.Image
	seen uint64
}

func newScreenSurface(p dotlayer.Pane, size image.Point, mode string) (*screenSurface, error) {
	s := &screenSurface{pane: p}
	if mode == surfaceTexture {
		s.up = &frameTexture{}
		ts, err := surface.NewTextureSurface(rgbaDevice{}, s.up, size)
		if err != nil {
			return nil, err
		}
		s.dst = ts
		return s, nil
	}
	s.img = surface.NewImageSurface(size)
	s.dst = s.img
	return s, nil
}

func (s *screenSurface) Composite(src *image.RGBA, r image.Rectangle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dst.Composite(src, r)
}

func (s *screenSurface) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dst.Flush()
}

func (s *screenSurface) Size() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dst.Size()
}

// Resize resizes the backing surface. A TextureSurface drops its texture on
// resize, so it gets the upload target back.
func (s *screenSurface) Resize(size image.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dst.Resize(size); err != nil {
		return err
	}
	if ts, ok := s.dst.(*surface.TextureSurface); ok {
		ts.SetTexture(s.up)
	}
	return nil
}

func (s *screenSurface) Format() gputypes.TextureFormat {
	return s.dst.Format()
}

func (s *screenSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tex != nil {
		s.tex.Deallocate()
		s.tex = nil
	}
	return s.dst.Close()
}

// present copies new pixels, if any, and draws the surface at pos.
func (s *screenSurface) present(screen *ebiten.Image, pos image.Point) {
	s.mu.Lock()
	size := s.dst.Size()
	if size.X <= 0 || size.Y <= 0 {
		s.mu.Unlock()
		return
	}
	fresh := false
	if s.tex == nil || s.tex.Bounds().Size() != size {
		if s.tex != nil {
			s.tex.Deallocate()
		}
		s.tex = ebiten.NewImage(size.X, size.Y)
		s.seen = 0
		fresh = true
	}
	if s.img != nil {
		if v := s.img.Version(); v != s.seen {
			s.tex.WritePixels(s.img.Image().Pix)
			s.seen = v
		}
	} else {
		s.up.writeTo(s.tex, fresh)
	}
	tex := s.tex
	s.mu.Unlock()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(pos.X), float64(pos.Y))
	screen.DrawImage(tex, op)
}

// mapHost is a minimal slippy map: a Web Mercator viewport that pans with
// the mouse and zooms in whole steps with the wheel.
type mapHost struct {
	frames *dotlayer.SignalFrames
	mode   string

	mu       sync.Mutex
	size     image.Point
	zoom     float64
	origin   geom.Point
	surfaces []*screenSurface
	events   *dotlayer.Events

	dragging bool
	last     image.Point
}

func newMapHost(cfg Config, frames *dotlayer.SignalFrames) *mapHost {
	h := &mapHost{
		frames: frames,
		mode:   cfg.Surface,
		size:   image.Pt(cfg.Width, cfg.Height),
		zoom:   float64(cfg.Zoom),
	}
	center := activity.Project(cfg.Lat, cfg.Lng).Mul(math.Exp2(h.zoom))
	h.origin = center.Sub(geom.Pt(float64(cfg.Width)/2, float64(cfg.Height)/2))
	return h
}

// center returns the coordinate at the middle of the viewport.
func (h *mapHost) center() (lat, lng float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.origin.Add(geom.Pt(float64(h.size.X)/2, float64(h.size.Y)/2))
	return activity.Unproject(c.Mul(math.Exp2(-h.zoom)))
}

// title is the window title for the current view.
func (h *mapHost) title() string {
	lat, lng := h.center()
	return fmt.Sprintf("dotview  %.5f, %.5f  z%d", lat, lng, int(h.Zoom()))
}

func (h *mapHost) Size() image.Point {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

func (h *mapHost) Zoom() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.zoom
}

func (h *mapHost) PixelOrigin() geom.Point {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.origin
}

func (h *mapHost) AddSurface(p dotlayer.Pane, size image.Point) (surface.Surface, error) {
	s, err := newScreenSurface(p, size, h.mode)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.surfaces = append(h.surfaces, s)
	slices.SortStableFunc(h.surfaces, func(a, b *screenSurface) int { return int(a.pane) - int(b.pane) })
	return s, nil
}

func (h *mapHost) RemoveSurface(s surface.Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.surfaces = slices.DeleteFunc(h.surfaces, func(e *screenSurface) bool { return surface.Surface(e) == s })
}

func (h *mapHost) Subscribe(ev dotlayer.Events) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = &ev
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.events = nil
	}
}

func (h *mapHost) subscribed() *dotlayer.Events {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events
}

// handleInput applies mouse panning and wheel zooming, then fires the
// matching events outside the lock.
func (h *mapHost) handleInput() {
	x, y := ebiten.CursorPosition()
	cursor := image.Pt(x, y)
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	_, wheel := ebiten.Wheel()

	var moved, moveEnd, zoomed bool
	h.mu.Lock()
	switch {
	case pressed && !h.dragging:
		h.dragging, h.last = true, cursor
	case pressed && cursor != h.last:
		d := cursor.Sub(h.last)
		h.origin = h.origin.Sub(geom.Pt(float64(d.X), float64(d.Y)))
		h.last = cursor
		moved = true
	case !pressed && h.dragging:
		h.dragging = false
		moveEnd = true
	}
	if wheel != 0 {
		dz := 1.0
		if wheel < 0 {
			dz = -1
		}
		if z := h.zoom + dz; z >= 0 && z <= 20 {
			c := geom.Pt(float64(cursor.X), float64(cursor.Y))
			h.origin = h.origin.Add(c).Mul(math.Exp2(dz)).Sub(c)
			h.zoom = z
			zoomed, moveEnd = true, true
		}
	}
	ev := h.events
	h.mu.Unlock()

	if ev == nil {
		return
	}
	if moved {
		ev.Move()
	}
	if zoomed {
		ev.Zoom(dotlayer.ZoomEvent{})
	}
	if moveEnd {
		ev.MoveEnd()
	}
}

// layout records the window size and reports whether it changed.
func (h *mapHost) layout(w, ht int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	size := image.Pt(w, ht)
	if size == h.size {
		return false
	}
	h.size = size
	return true
}

func (h *mapHost) present(screen *ebiten.Image) {
	h.mu.Lock()
	surfaces := slices.Clone(h.surfaces)
	h.mu.Unlock()
	for _, s := range surfaces {
		pos := image.Point{}
		if s.pane == dotlayer.PaneControl {
			pos = image.Pt(10, 10)
		}
		s.present(screen, pos)
	}
}
