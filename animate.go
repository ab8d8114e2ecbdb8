package dotlayer

import (
	"context"
	"time"

	"github.com/gogpu/dotlayer/collection"
	"github.com/gogpu/dotlayer/geom"
)

// Animate starts, or resumes, the dot animation. Animation time continues
// from where Pause stopped it. Before the layer is ready this only clears
// the paused state; Reset starts the loop.
func (l *Layer) Animate() {
	l.mu.Lock()
	l.paused = false
	l.clock.Resume()
	if !l.ready || l.animDone != nil {
		l.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(l.life)
	done := make(chan struct{})
	l.animCancel, l.animDone = cancel, done
	l.pacer.Reset(l.opts.now())
	frames := l.frames
	l.mu.Unlock()

	Logger().Debug("dotlayer: animation started")
	go l.run(ctx, frames, done)
}

// Pause stops the animation and freezes animation time. It returns after
// the last frame has finished drawing.
func (l *Layer) Pause() {
	l.mu.Lock()
	l.paused = true
	l.clock.Pause()
	cancel, done := l.animCancel, l.animDone
	l.animCancel, l.animDone = nil, nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		Logger().Debug("dotlayer: animation paused")
	}
}

// Paused reports whether the animation is paused.
func (l *Layer) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// AnimationTime returns the current animation time.
func (l *Layer) AnimationTime() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clock.Elapsed()
}

// run draws a frame for every refresh the pacer admits until ctx ends.
func (l *Layer) run(ctx context.Context, frames FrameSource, done chan struct{}) {
	defer func() {
		l.mu.Lock()
		if l.animDone == done {
			l.animCancel, l.animDone = nil, nil
		}
		l.mu.Unlock()
		close(done)
	}()

	for {
		ts, err := frames.NextFrame(ctx)
		if err != nil {
			if ctx.Err() == nil {
				Logger().Warn("dotlayer: frame source failed", "err", err)
			}
			return
		}
		l.mu.Lock()
		if ctx.Err() != nil {
			l.mu.Unlock()
			return
		}
		l.frameLocked(ts)
		l.mu.Unlock()
	}
}

func (l *Layer) frameLocked(ts time.Time) {
	delay, ok := l.pacer.Ready(ts)
	if !ok || !l.ready {
		return
	}
	n := l.drawDotsLocked(l.clock.At(ts).Seconds())
	l.lastDots = n
	l.flushLocked(l.dots, l.dotSurf, false)
	l.opts.metrics.ObserveFrame(delay, n)

	if l.info != nil && l.info.Update(delay, n) {
		img := l.info.Image()
		if err := l.infoSurf.Composite(img, img.Bounds()); err != nil {
			Logger().Warn("dotlayer: info box composite failed", "err", err)
			return
		}
		if err := l.infoSurf.Flush(); err != nil {
			Logger().Warn("dotlayer: info box flush failed", "err", err)
		}
	}
}

// drawDotsLocked clears the dot buffer and draws every in-view dot at
// animation time secs, shadows first.
func (l *Layer) drawDotsLocked(secs float64) int {
	l.dots.ClearAll()
	if !l.vb.Calibrated() {
		return 0
	}
	m := l.vb.Matrix()
	s := l.settings
	p := collection.DotParams{
		Size:      s.Size,
		Alpha:     s.Alpha,
		Period:    s.Period,
		TimeScale: s.TimeScale,
		Seconds:   secs,
	}
	if sh := l.params.Shadow; sh.Enabled {
		sp := p
		sp.Color = shadowColor(sh)
		l.coll.DrawDots(l.dots, geom.Translate(float64(sh.X), float64(sh.Y)).Multiply(m), sp, nil)
	}
	return l.coll.DrawDots(l.dots, m, p, nil)
}

// LastDotCount returns the number of dots in the latest frame.
func (l *Layer) LastDotCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastDots
}
