package dotlayer

import (
	"time"

	"golang.org/x/text/language"

	"github.com/gogpu/dotlayer/metrics"
)

// Option configures a Layer during creation.
//
// Example:
//
//	l := dotlayer.New(params,
//	    dotlayer.WithFrameSource(frames),
//	    dotlayer.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
//	)
type Option func(*options)

type options struct {
	frames         FrameSource
	metrics        *metrics.Recorder
	now            func() time.Time
	lodWorkers     int
	targetFPS      float64
	minRedrawDelay time.Duration
	continuous     bool
	forceFull      bool
	infoBox        bool
	debugBorders   bool
	lang           language.Tag
}

// Defaults for the animation loop and redraw throttling.
const (
	DefaultTargetFPS      = 30
	DefaultMinRedrawDelay = time.Second
)

func defaultOptions() options {
	return options{
		now:            time.Now,
		targetFPS:      DefaultTargetFPS,
		minRedrawDelay: DefaultMinRedrawDelay,
		lang:           language.English,
	}
}

// WithFrameSource sets where display refresh signals come from. Without it
// the layer ticks at 60 Hz on its own.
func WithFrameSource(fs FrameSource) Option {
	return func(o *options) {
		o.frames = fs
	}
}

// WithMetrics records redraw and frame statistics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// WithNow replaces the wall clock. Frame timestamps from the FrameSource
// should come from the same clock.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLODWorkers bounds how many level-of-detail indexes are built at once.
func WithLODWorkers(n int) Option {
	return func(o *options) {
		o.lodWorkers = n
	}
}

// WithTargetFPS sets the animation frame rate cap.
func WithTargetFPS(fps float64) Option {
	return func(o *options) {
		if fps > 0 {
			o.targetFPS = fps
		}
	}
}

// WithContinuousRedraws redraws during pans, not only when they end, at
// most once per minimum redraw delay.
func WithContinuousRedraws() Option {
	return func(o *options) {
		o.continuous = true
	}
}

// WithMinRedrawDelay sets the minimum time between redraws triggered by
// continuous pans.
func WithMinRedrawDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.minRedrawDelay = d
		}
	}
}

// WithForceFullRedraw disables pan shifting: every redraw clears and
// repaints the whole path buffer.
func WithForceFullRedraw() Option {
	return func(o *options) {
		o.forceFull = true
	}
}

// WithDebugOverlay shows frame timing and dot counts in the control pane,
// with numbers formatted for lang.
func WithDebugOverlay(lang language.Tag) Option {
	return func(o *options) {
		o.infoBox = true
		o.lang = lang
	}
}

// WithDebugBorders outlines the viewport and the path draw box in a debug
// pane.
func WithDebugBorders() Option {
	return func(o *options) {
		o.debugBorders = true
	}
}
