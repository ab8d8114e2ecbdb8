package dotlayer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/time/rate"

	"github.com/gogpu/dotlayer/activity"
	"github.com/gogpu/dotlayer/collection"
	"github.com/gogpu/dotlayer/internal/clock"
	"github.com/gogpu/dotlayer/overlay"
	"github.com/gogpu/dotlayer/raster"
	"github.com/gogpu/dotlayer/surface"
	"github.com/gogpu/dotlayer/viewbox"
)

// Lifecycle errors.
var (
	ErrNilHost     = errors.New("dotlayer: nil host")
	ErrAttached    = errors.New("dotlayer: layer already attached")
	ErrNotAttached = errors.New("dotlayer: layer not attached")
)

// defaultFrameRate is the refresh rate assumed when no FrameSource is given.
const defaultFrameRate = 60

// Layer draws animated activity dots and paths over a host map.
//
// A Layer moves through these states: created, attached (not ready),
// ready (animating or paused) and detached. All methods are safe for
// concurrent use; redraws and animation frames never run at the same time,
// and a redraw requested while another is running waits for it.
type Layer struct {
	opts options
	coll *collection.Collection

	// mu serializes redraws, animation frames and every field below.
	mu sync.Mutex

	params   Params
	settings DotSettings
	ready    bool
	paused   bool
	clock    *clock.Clock
	pacer    *clock.Pacer
	limiter  *rate.Limiter

	host   Host
	vb     *viewbox.ViewBox
	unsub  func()
	life   context.Context
	stop   context.CancelFunc
	frames FrameSource
	ticker *TickerFrames

	paths, dots, debug                     *raster.Graphics
	pathSurf, dotSurf, debugSurf, infoSurf surface.Surface
	info                                   *overlay.InfoBox

	animCancel context.CancelFunc
	animDone   chan struct{}

	last     RedrawStats
	lastDots int
}

// New returns a detached layer with no activities.
func New(p Params, opts ...Option) (*Layer, error) {
	if err := ValidateParams(p); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	copts := []collection.Option{collection.WithStyles(styles(p))}
	if o.lodWorkers > 0 {
		copts = append(copts, collection.WithLODWorkers(o.lodWorkers))
	}
	l := &Layer{
		opts:    o,
		coll:    collection.New(copts...),
		params:  p,
		paused:  p.Paused,
		clock:   clock.New(o.now),
		pacer:   clock.NewPacer(o.targetFPS),
		limiter: rate.NewLimiter(rate.Every(o.minRedrawDelay), 1),
	}
	if l.paused {
		l.clock.Pause()
	}
	l.settings = dotSettings(p, 0)
	return l, nil
}

func styles(p Params) collection.Styles {
	return collection.Styles{NormalPathWidth: p.PathWidth, SelectedPathWidth: p.SelectedPathWidth}
}

// Attach acquires surfaces from host, subscribes to its events and performs
// the initial Reset.
func (l *Layer) Attach(ctx context.Context, host Host) error {
	if host == nil {
		return ErrNilHost
	}

	l.mu.Lock()
	if l.host != nil {
		l.mu.Unlock()
		return ErrAttached
	}
	size := host.Size()
	if err := l.addSurfacesLocked(host, size); err != nil {
		l.mu.Unlock()
		return err
	}
	l.host = host
	l.vb = viewbox.New(host)
	l.life, l.stop = context.WithCancel(context.Background())
	l.frames = l.opts.frames
	if l.frames == nil {
		l.ticker = NewTickerFrames(defaultFrameRate)
		l.frames = l.ticker
	}
	life := l.life
	l.mu.Unlock()

	unsub := host.Subscribe(Events{
		Move:    func() { l.onMove(life) },
		MoveEnd: func() { l.report("moveend", l.Redraw(life, false)) },
		Zoom:    func(e ZoomEvent) { l.onZoom(life, e) },
		Resize:  func() { l.report("resize", l.Redraw(life, false)) },
	})
	l.mu.Lock()
	l.unsub = unsub
	l.mu.Unlock()

	Logger().Info("dotlayer: attached", "width", size.X, "height", size.Y)
	return l.Reset(ctx)
}

// addSurfacesLocked creates the surfaces and their pixel buffers, removing
// any it created if one fails.
func (l *Layer) addSurfacesLocked(host Host, size image.Point) error {
	var created []surface.Surface
	add := func(p Pane, sz image.Point) (surface.Surface, error) {
		s, err := host.AddSurface(p, sz)
		if err != nil {
			for _, c := range created {
				host.RemoveSurface(c)
				_ = c.Close()
			}
			return nil, fmt.Errorf("dotlayer: add %s surface: %w", p, err)
		}
		created = append(created, s)
		return s, nil
	}

	var err error
	if l.pathSurf, err = add(PanePaths, size); err != nil {
		return err
	}
	if l.dotSurf, err = add(PaneDots, size); err != nil {
		return err
	}
	if l.opts.debugBorders {
		if l.debugSurf, err = add(PaneDebug, size); err != nil {
			return err
		}
		l.debug = raster.New(newBuffer(size))
	}
	if l.opts.infoBox {
		l.info = overlay.New(l.opts.lang)
		if l.infoSurf, err = add(PaneControl, l.info.Image().Bounds().Size()); err != nil {
			return err
		}
	}
	l.paths = raster.New(newBuffer(size))
	l.dots = raster.New(newBuffer(size))
	return nil
}

func newBuffer(size image.Point) *image.RGBA {
	return image.NewRGBA(image.Rectangle{Max: size})
}

// surfacesLocked returns the attached surfaces in stacking order.
func (l *Layer) surfacesLocked() []surface.Surface {
	var out []surface.Surface
	for _, s := range []surface.Surface{l.pathSurf, l.dotSurf, l.debugSurf, l.infoSurf} {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Detach stops animation, unsubscribes from the host and releases the
// surfaces. Activities and settings are kept for a later Attach.
func (l *Layer) Detach() error {
	l.mu.Lock()
	if l.host == nil {
		l.mu.Unlock()
		return ErrNotAttached
	}
	l.ready = false
	cancel, done := l.animCancel, l.animDone
	l.animCancel, l.animDone = nil, nil
	l.stop()
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
	}
	host, unsub, surfaces := l.host, l.unsub, l.surfacesLocked()
	l.host, l.vb, l.unsub, l.frames = nil, nil, nil, nil
	l.pathSurf, l.dotSurf, l.debugSurf, l.infoSurf = nil, nil, nil, nil
	l.paths, l.dots, l.debug, l.info = nil, nil, nil, nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if unsub != nil {
		unsub()
	}
	var errs []error
	for _, s := range surfaces {
		host.RemoveSurface(s)
		errs = append(errs, s.Close())
	}
	Logger().Info("dotlayer: detached")
	return errors.Join(errs...)
}

// Add builds an activity from spec and inserts it. Call Reset after a
// batch of changes.
func (l *Layer) Add(spec activity.Spec) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coll.Add(spec)
}

// AddActivity inserts a prebuilt activity. Call Reset after a batch of
// changes.
func (l *Layer) AddActivity(a *activity.Activity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.coll.AddActivity(a)
}

// Remove deletes an activity and reports whether it existed. Call Reset
// after a batch of changes.
func (l *Layer) Remove(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coll.Remove(id)
}

// Get returns the activity with the given id.
func (l *Layer) Get(id int64) (*activity.Activity, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coll.Get(id)
}

// Len returns the number of activities.
func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coll.Len()
}

// Reset rebuilds the drawing state after activities were added or removed:
// it reindexes the collection, recomputes dot settings, redraws everything
// and resumes animation unless paused. Before Attach it only reindexes.
func (l *Layer) Reset(ctx context.Context) error {
	l.mu.Lock()
	l.ready = false
	l.coll.Reset()
	if l.host == nil {
		l.mu.Unlock()
		return nil
	}
	l.settings = dotSettings(l.params, l.host.Zoom())
	l.ready = true
	err := l.redrawLocked(ctx, true)
	paused := l.paused
	l.mu.Unlock()

	if err != nil {
		return err
	}
	if !paused {
		l.Animate()
	}
	return nil
}

// Params returns the current settings.
func (l *Layer) Params() Params {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.params
}

// SetParams replaces the settings and redraws. A change of p.Paused pauses
// or resumes the animation.
func (l *Layer) SetParams(ctx context.Context, p Params) error {
	if err := ValidateParams(p); err != nil {
		return err
	}
	l.mu.Lock()
	l.params = p
	l.coll.SetStyles(styles(p))
	l.settings = dotSettings(p, l.zoomLocked())
	err := l.redrawLocked(ctx, true)
	changed := p.Paused != l.paused
	l.mu.Unlock()

	if changed {
		if p.Paused {
			l.Pause()
		} else {
			l.Animate()
		}
	}
	return err
}

// UpdateDotSettings recomputes the dot size, opacity and timing from the
// current settings and zoom, optionally replacing the shadow. While paused
// the dots are redrawn at once.
func (l *Layer) UpdateDotSettings(shadow *Shadow) (DotSettings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if shadow != nil {
		if shadow.Enabled {
			if _, err := activity.ParseColor(shadow.Color); err != nil {
				return l.settings, fmt.Errorf("dotlayer: shadow: %w", err)
			}
		}
		l.params.Shadow = *shadow
	}
	l.settings = dotSettings(l.params, l.zoomLocked())
	if l.paused && l.ready {
		l.lastDots = l.drawDotsLocked(l.clock.Seconds())
		l.flushLocked(l.dots, l.dotSurf, false)
	}
	return l.settings, nil
}

func (l *Layer) zoomLocked() float64 {
	if l.vb != nil && l.vb.Calibrated() {
		return l.vb.Zoom()
	}
	if l.host != nil {
		return l.host.Zoom()
	}
	return 0
}

// SetSelected changes an activity's selection and redraws. It reports
// whether the activity exists.
func (l *Layer) SetSelected(ctx context.Context, id int64, selected bool) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.coll.Get(id)
	if !ok {
		return false, nil
	}
	if a.Selected() == selected {
		return true, nil
	}
	a.SetSelected(selected)
	return true, l.redrawLocked(ctx, true)
}

// Select returns the in-view activities with a point inside the screen
// rectangle r, in draw order.
func (l *Layer) Select(r image.Rectangle) []*activity.Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.vb == nil || !l.vb.Calibrated() {
		return nil
	}
	var out []*activity.Activity
	for a := range l.coll.InPxBounds(l.vb, r) {
		out = append(out, a)
	}
	return out
}

// report logs a failed event-driven redraw. Such failures are never
// returned to the host.
func (l *Layer) report(event string, err error) {
	if err != nil {
		Logger().Warn("dotlayer: redraw failed", "event", event, "err", err)
	}
}

func (l *Layer) onMove(ctx context.Context) {
	if !l.opts.continuous {
		return
	}
	if !l.limiter.AllowN(l.opts.now(), 1) {
		l.opts.metrics.Throttled()
		return
	}
	l.report("move", l.Redraw(ctx, false))
}

func (l *Layer) onZoom(ctx context.Context, e ZoomEvent) {
	if e.Pinch || e.FlyTo {
		l.report("zoom", l.Redraw(ctx, true))
	}
}
