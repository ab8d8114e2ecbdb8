package activity

import (
	"math"

	"github.com/gogpu/dotlayer/internal/bitset"
)

// SegmentFunc receives a segment in zoom-0 world pixels.
type SegmentFunc func(x0, y0, x1, y1 float64)

// DotFunc receives a dot position in zoom-0 world pixels.
type DotFunc func(x, y float64)

// ForEachSegment calls fn for every segment in mask (the segment mask when
// mask is nil) and returns the number of segments.
func (a *Activity) ForEachSegment(fn SegmentFunc, mask *bitset.BitSet) int {
	if mask == nil {
		mask = a.segMask
	}
	n := 0
	a.eachSegment(mask, func(i, j int) bool {
		fn(a.xs[i], a.ys[i], a.xs[j], a.ys[j])
		n++
		return true
	})
	return n
}

// ForEachDot calls fn for every dot on a segment in mask (the segment mask
// when mask is nil) and returns the number of dots.
//
// Dots sit at track times t with t ≡ tsecs·timeScale (mod period), so one
// dot runs along the track every period seconds of track time. Positions
// are interpolated between the original points, not the simplified ones.
func (a *Activity) ForEachDot(fn DotFunc, tsecs, period, timeScale float64, mask *bitset.BitSet) int {
	if period <= 0 {
		return 0
	}
	if mask == nil {
		mask = a.segMask
	}
	base := math.Mod(tsecs*timeScale, period)
	if base < 0 {
		base += period
	}

	n := 0
	a.eachSegment(mask, func(i, j int) bool {
		t0, t1 := a.ts[i], a.ts[j]
		t := base + math.Ceil((t0-base)/period)*period
		p := i
		for ; t < t1; t += period {
			for p+1 < j && a.ts[p+1] <= t {
				p++
			}
			x, y := a.lerpAt(p, t)
			fn(x, y)
			n++
		}
		return true
	})
	return n
}

// lerpAt interpolates the position at time t between points p and p+1.
func (a *Activity) lerpAt(p int, t float64) (float64, float64) {
	dt := a.ts[p+1] - a.ts[p]
	if dt <= 0 {
		return a.xs[p], a.ys[p]
	}
	f := (t - a.ts[p]) / dt
	return a.xs[p] + f*(a.xs[p+1]-a.xs[p]), a.ys[p] + f*(a.ys[p+1]-a.ys[p])
}
