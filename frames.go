package dotlayer

import (
	"context"
	"time"
)

// FrameSource delivers display refresh signals.
type FrameSource interface {
	// NextFrame blocks until the next refresh and returns its timestamp.
	NextFrame(ctx context.Context) (time.Time, error)
}

// TickerFrames is a FrameSource driven by a time.Ticker.
type TickerFrames struct {
	t *time.Ticker
}

// NewTickerFrames returns a FrameSource ticking hz times per second.
// Call Stop when done.
func NewTickerFrames(hz float64) *TickerFrames {
	return &TickerFrames{t: time.NewTicker(time.Duration(float64(time.Second) / hz))}
}

// NextFrame implements FrameSource.
func (f *TickerFrames) NextFrame(ctx context.Context) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case t := <-f.t.C:
		return t, nil
	}
}

// Stop releases the ticker.
func (f *TickerFrames) Stop() {
	f.t.Stop()
}

// SignalFrames is a FrameSource fed by the host's own render loop.
// Signals that arrive while the previous one is still pending are dropped,
// like refreshes that happen while a frame is being drawn.
type SignalFrames struct {
	c chan time.Time
}

// NewSignalFrames returns an empty SignalFrames.
func NewSignalFrames() *SignalFrames {
	return &SignalFrames{c: make(chan time.Time, 1)}
}

// Signal reports a refresh at t and whether it was queued. It never blocks.
func (f *SignalFrames) Signal(t time.Time) bool {
	select {
	case f.c <- t:
		return true
	default:
		return false
	}
}

// NextFrame implements FrameSource.
func (f *SignalFrames) NextFrame(ctx context.Context) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case t := <-f.c:
		return t, nil
	}
}
