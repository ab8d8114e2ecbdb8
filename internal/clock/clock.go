// Package clock keeps animation time separate from wall-clock time.
//
// Clock stops while paused, so dots resume exactly where they stopped.
// Pacer decides which display refreshes are due for a new frame at a fixed
// target rate.
package clock

import "time"

// Clock measures animation time. The zero value is not usable; call New.
type Clock struct {
	now func() time.Time

	// origin is the wall time at which animation time was zero, adjusted on
	// every resume so paused spans are skipped.
	origin   time.Time
	pausedAt time.Duration
	paused   bool
}

// New returns a running clock at animation time zero. now supplies wall
// time; nil means time.Now.
func New(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, origin: now()}
}

// Pause freezes animation time. Pausing a paused clock does nothing.
func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.pausedAt = c.now().Sub(c.origin)
	c.paused = true
}

// Resume continues animation time from where Pause froze it.
func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	c.origin = c.now().Add(-c.pausedAt)
	c.paused = false
}

// Paused reports whether the clock is paused.
func (c *Clock) Paused() bool {
	return c.paused
}

// Elapsed returns the current animation time.
func (c *Clock) Elapsed() time.Duration {
	if c.paused {
		return c.pausedAt
	}
	return c.now().Sub(c.origin)
}

// At returns the animation time at wall time t, for frame timestamps that
// differ slightly from now. While paused it returns the frozen time.
func (c *Clock) At(t time.Time) time.Duration {
	if c.paused {
		return c.pausedAt
	}
	return t.Sub(c.origin)
}

// Seconds returns Elapsed in seconds.
func (c *Clock) Seconds() float64 {
	return c.Elapsed().Seconds()
}

// Pacer admits at most one frame per interval.
type Pacer struct {
	interval time.Duration
	last     time.Time
}

// NewPacer returns a pacer for fps frames per second. fps must be positive.
func NewPacer(fps float64) *Pacer {
	return &Pacer{interval: time.Duration(float64(time.Second) / fps)}
}

// Interval returns the minimum time between frames.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Reset makes t the time of the last frame.
func (p *Pacer) Reset(t time.Time) {
	p.last = t
}

// Ready reports whether a refresh at t is due for a frame, and the delay
// since the last frame. When it is, the reference time advances to the
// latest whole interval at or before t, so the frame rate does not drift
// with refresh jitter.
func (p *Pacer) Ready(t time.Time) (time.Duration, bool) {
	d := t.Sub(p.last)
	if d < p.interval {
		return d, false
	}
	p.last = t.Add(-(d % p.interval))
	return d, true
}
