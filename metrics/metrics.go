// Package metrics exports layer instrumentation to Prometheus.
//
// A nil *Recorder is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Redraw kinds.
const (
	RedrawFull    = "full"
	RedrawPartial = "partial"
	RedrawSkipped = "skipped"
)

// Recorder holds the layer's collectors.
type Recorder struct {
	frameDelay prometheus.Histogram
	primitives *prometheus.CounterVec
	redraws    *prometheus.CounterVec
	lodBuilds  prometheus.Counter
	inView     prometheus.Gauge
	throttled  prometheus.Counter
}

// New registers the collectors with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		frameDelay: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dotlayer_frame_delay_seconds",
			Help:    "Time between consecutive animation frames",
			Buckets: []float64{0.008, 0.016, 0.025, 0.033, 0.05, 0.075, 0.1, 0.25, 0.5, 1},
		}),
		primitives: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dotlayer_primitives_total",
			Help: "Primitives rasterized, by kind",
		}, []string{"kind"}),
		redraws: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dotlayer_redraws_total",
			Help: "Viewport redraws, by kind",
		}, []string{"kind"}),
		lodBuilds: f.NewCounter(prometheus.CounterOpts{
			Name: "dotlayer_lod_builds_total",
			Help: "Level-of-detail indexes built",
		}),
		inView: f.NewGauge(prometheus.GaugeOpts{
			Name: "dotlayer_activities_in_view",
			Help: "Activities with at least one segment in view",
		}),
		throttled: f.NewCounter(prometheus.CounterOpts{
			Name: "dotlayer_moves_throttled_total",
			Help: "Continuous move events dropped by the redraw rate limit",
		}),
	}
}

// ObserveFrame records one animation frame.
func (r *Recorder) ObserveFrame(delay time.Duration, dots int) {
	if r == nil {
		return
	}
	r.frameDelay.Observe(delay.Seconds())
	r.primitives.WithLabelValues("dot").Add(float64(dots))
}

// ObserveRedraw records a viewport redraw of the given kind.
func (r *Recorder) ObserveRedraw(kind string, segments, dots int) {
	if r == nil {
		return
	}
	r.redraws.WithLabelValues(kind).Inc()
	r.primitives.WithLabelValues("segment").Add(float64(segments))
	r.primitives.WithLabelValues("dot").Add(float64(dots))
}

// ObserveContext records the outcome of a visibility update.
func (r *Recorder) ObserveContext(inView, built int) {
	if r == nil {
		return
	}
	r.inView.Set(float64(inView))
	r.lodBuilds.Add(float64(built))
}

// Throttled counts a move event dropped by the rate limit.
func (r *Recorder) Throttled() {
	if r == nil {
		return
	}
	r.throttled.Inc()
}
