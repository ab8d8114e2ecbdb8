package activity

import (
	"fmt"
	"math"

	"github.com/gogpu/dotlayer/geom"
	"github.com/gogpu/dotlayer/internal/bitset"
)

// SimplifyTolerance is the largest distance, in screen pixels at the target
// zoom, that a dropped point may lie from the simplified track.
var SimplifyTolerance = 1.0

// IdxSet returns the level-of-detail index for zoom, or nil if it has not
// been built.
func (a *Activity) IdxSet(zoom int) *bitset.BitSet {
	return a.idxSet[zoom]
}

// HasIdxSet reports whether the index for zoom exists.
func (a *Activity) HasIdxSet(zoom int) bool {
	_, ok := a.idxSet[zoom]
	return ok
}

// MakeIdxSet builds (or returns the cached) level-of-detail index for zoom:
// the Ramer-Douglas-Peucker subset of point indices at SimplifyTolerance
// screen pixels. The first and last points are always kept.
func (a *Activity) MakeIdxSet(zoom int) *bitset.BitSet {
	if s, ok := a.idxSet[zoom]; ok {
		return s
	}
	tol := SimplifyTolerance / math.Exp2(float64(zoom))
	s := simplify(a.xs, a.ys, tol*tol)
	a.idxSet[zoom] = s
	return s
}

// simplify runs Ramer-Douglas-Peucker with an explicit stack.
func simplify(xs, ys []float64, tol2 float64) *bitset.BitSet {
	n := len(xs)
	keep := bitset.New(n)
	keep.Add(0)
	keep.Add(n - 1)

	type span struct{ lo, hi int }
	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo < 2 {
			continue
		}
		a := geom.Pt(xs[s.lo], ys[s.lo])
		b := geom.Pt(xs[s.hi], ys[s.hi])
		far, farD := -1, tol2
		for i := s.lo + 1; i < s.hi; i++ {
			if d := geom.SegmentDistanceSquared(geom.Pt(xs[i], ys[i]), a, b); d > farD {
				far, farD = i, d
			}
		}
		if far < 0 {
			continue
		}
		keep.Add(far)
		stack = append(stack, span{s.lo, far}, span{far, s.hi})
	}
	return keep
}

// SegMask returns the segments currently in view, keyed by the index of
// their first point. Each segment ends at the next index of the zoom's
// level-of-detail set.
func (a *Activity) SegMask() *bitset.BitSet {
	return a.segMask
}

// MaskZoom returns the zoom the segment mask was built for, or -1.
func (a *Activity) MaskZoom() int {
	return a.maskZoom
}

// ResetSegMask empties the segment mask.
func (a *Activity) ResetSegMask() {
	a.segMask.Clear()
	a.maskZoom = -1
}

// UpdateSegMask rebuilds the segment mask for the level-of-detail set of
// zoom restricted to viewport (zoom-0 world pixels). It reports whether any
// segment is in view.
//
// It panics if the level-of-detail set for zoom has not been built.
func (a *Activity) UpdateSegMask(viewport geom.Rect, zoom int) bool {
	lod, ok := a.idxSet[zoom]
	if !ok {
		panic(fmt.Sprintf("activity %d: level-of-detail index for zoom %d was not built", a.ID, zoom))
	}
	a.segMask.Clear()
	a.maskZoom = zoom

	i, ok := lod.Next(0)
	for ok {
		j, more := lod.Next(i + 1)
		if !more {
			break
		}
		if a.segBounds(i, j).Overlaps(viewport) {
			a.segMask.Add(i)
		}
		i = j
	}
	return !a.segMask.IsEmpty()
}

// PartialSegMask returns the masked segments whose bounds overlap region.
// The result is reused by the next call.
func (a *Activity) PartialSegMask(region geom.Rect) *bitset.BitSet {
	a.partial.Clear()
	a.eachSegment(a.segMask, func(i, j int) bool {
		if a.segBounds(i, j).Overlaps(region) {
			a.partial.Add(i)
		}
		return true
	})
	return a.partial
}

// AnyPointIn reports whether a masked point lies inside r.
func (a *Activity) AnyPointIn(r geom.Rect) bool {
	found := false
	a.eachSegment(a.segMask, func(i, j int) bool {
		if r.Contains(a.Point(i)) || r.Contains(a.Point(j)) {
			found = true
			return false
		}
		return true
	})
	return found
}

func (a *Activity) segBounds(i, j int) geom.Rect {
	return geom.RectFromPoints(a.Point(i), a.Point(j))
}

// eachSegment calls fn with the start and end index of every segment in
// mask until fn returns false.
func (a *Activity) eachSegment(mask *bitset.BitSet, fn func(i, j int) bool) {
	if a.maskZoom < 0 {
		return
	}
	lod := a.idxSet[a.maskZoom]
	for i := range mask.All() {
		j, ok := lod.Next(i + 1)
		if !ok {
			continue
		}
		if !fn(i, j) {
			return
		}
	}
}
