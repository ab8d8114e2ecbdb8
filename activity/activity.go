// Package activity holds a single GPS track prepared for drawing: its
// projected geometry, per-zoom level-of-detail indexes and the segment mask
// restricting it to the current viewport.
//
// All geometry is stored in zoom-0 world pixels (see viewbox). An Activity is
// not safe for concurrent use, with one exception: MakeIdxSet may run on
// different activities in parallel.
package activity

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/gogpu/dotlayer/geom"
	"github.com/gogpu/dotlayer/internal/bitset"
	"github.com/twpayne/go-polyline"
	"gonum.org/v1/gonum/floats"
)

// Sentinel errors returned while building an Activity.
var (
	ErrTooFewPoints = errors.New("activity: track needs at least two points")
	ErrTimeMismatch = errors.New("activity: time stream and track lengths differ")
	ErrBadPolyline  = errors.New("activity: invalid polyline")
	ErrBadColor     = errors.New("activity: invalid color")
)

// DefaultPathColor is used when a spec carries no path color.
var DefaultPathColor = color.RGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}

// Colors are the two draw colors of an activity.
type Colors struct {
	Path color.RGBA
	Dot  color.RGBA
}

// Activity is one track.
type Activity struct {
	ID       int64
	Type     string
	Name     string
	Start    time.Time
	Distance float64       // meters
	Elapsed  time.Duration // as reported by the source
	Colors   Colors

	// Idx is the dense position assigned by the owning collection. It is
	// only meaningful between two collection resets.
	Idx int

	selected bool
	onSelect func(a *Activity)

	xs, ys   []float64
	ts       []float64 // seconds since the first point
	pxBounds geom.Rect

	idxSet map[int]*bitset.BitSet

	segMask  *bitset.BitSet
	maskZoom int
	partial  *bitset.BitSet
}

// New builds an Activity from an import record.
func New(spec Spec) (*Activity, error) {
	coords, _, err := polyline.DecodeCoords([]byte(spec.Polyline))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPolyline, err)
	}
	pts := make([]geom.Point, len(coords))
	for i, c := range coords {
		pts[i] = Project(c[0], c[1])
	}

	var ts []float64
	if len(spec.Time) > 0 {
		ts = DecodeTimeStream(spec.Time, 0)
	} else {
		ts = evenTimes(len(pts), spec.ElapsedTime)
	}

	a, err := NewTrack(spec.ID, pts, ts)
	if err != nil {
		return nil, fmt.Errorf("activity %d: %w", spec.ID, err)
	}
	a.Type = spec.Type
	a.Name = spec.Name
	a.Start = time.Unix(spec.TS, 0).UTC()
	a.Distance = spec.TotalDistance
	a.Elapsed = time.Duration(spec.ElapsedTime * float64(time.Second))
	a.selected = spec.Selected
	if spec.PathColor != "" {
		c, err := ParseColor(spec.PathColor)
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", spec.ID, err)
		}
		a.Colors.Path = c
	}
	return a, nil
}

// NewTrack builds an Activity from points already projected to zoom-0
// world pixels and their times in seconds.
func NewTrack(id int64, pts []geom.Point, ts []float64) (*Activity, error) {
	if len(pts) < 2 {
		return nil, ErrTooFewPoints
	}
	if len(ts) != len(pts) {
		return nil, fmt.Errorf("%w: %d times for %d points", ErrTimeMismatch, len(ts), len(pts))
	}
	a := &Activity{
		ID:       id,
		Colors:   Colors{Path: DefaultPathColor, Dot: DefaultPathColor},
		xs:       make([]float64, len(pts)),
		ys:       make([]float64, len(pts)),
		ts:       make([]float64, len(ts)),
		idxSet:   make(map[int]*bitset.BitSet),
		segMask:  bitset.New(len(pts)),
		partial:  bitset.New(len(pts)),
		maskZoom: -1,
	}
	for i, p := range pts {
		a.xs[i], a.ys[i] = p.X, p.Y
	}
	t0 := ts[0]
	for i, t := range ts {
		a.ts[i] = t - t0
	}
	a.pxBounds = geom.R(floats.Min(a.xs), floats.Min(a.ys), floats.Max(a.xs), floats.Max(a.ys))
	return a, nil
}

// evenTimes spreads n samples over total seconds, or one per second if
// total is unknown.
func evenTimes(n int, total float64) []float64 {
	ts := make([]float64, n)
	step := 1.0
	if total > 0 && n > 1 {
		step = total / float64(n-1)
	}
	for i := range ts {
		ts[i] = float64(i) * step
	}
	return ts
}

// Len returns the number of points.
func (a *Activity) Len() int { return len(a.xs) }

// Point returns point i in zoom-0 world pixels.
func (a *Activity) Point(i int) geom.Point { return geom.Pt(a.xs[i], a.ys[i]) }

// Time returns the time of point i in seconds since the first point.
func (a *Activity) Time(i int) float64 { return a.ts[i] }

// Duration returns the time span of the track in seconds.
func (a *Activity) Duration() float64 { return a.ts[len(a.ts)-1] }

// PxBounds returns the bounding box in zoom-0 world pixels.
func (a *Activity) PxBounds() geom.Rect { return a.pxBounds }

// Selected reports whether the activity is selected.
func (a *Activity) Selected() bool { return a.selected }

// SetSelected changes the selection state and notifies the select hook.
func (a *Activity) SetSelected(v bool) {
	if a.selected == v {
		return
	}
	a.selected = v
	if a.onSelect != nil {
		a.onSelect(a)
	}
}

// OnSelect installs fn as the hook called after the selection changes.
func (a *Activity) OnSelect(fn func(a *Activity)) {
	a.onSelect = fn
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" into a premultiplied
// color.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	c := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(c).(color.RGBA), nil
}
