// Package collection owns the set of activities drawn by a layer.
//
// It keeps a dense array of activities (rebuilt by Reset) and two bit sets
// over that array: the activities in view after the latest UpdateContext and
// the ones in view before it. UpdateContext culls by bounding box, builds any
// missing level-of-detail indexes, then restricts every in-view activity to
// the segments that cross the viewport.
//
// A Collection is not safe for concurrent use.
package collection

import (
	"cmp"
	"context"
	"fmt"
	"image"
	"iter"
	"runtime"
	"slices"

	"github.com/gogpu/dotlayer/activity"
	"github.com/gogpu/dotlayer/geom"
	"github.com/gogpu/dotlayer/internal/bitset"
	"golang.org/x/sync/errgroup"
)

// Styles holds the path widths, in pixels, per selection state.
type Styles struct {
	NormalPathWidth   int
	SelectedPathWidth int
}

// DefaultStyles are the widths used unless WithStyles overrides them.
var DefaultStyles = Styles{NormalPathWidth: 1, SelectedPathWidth: 3}

// Option configures a Collection.
type Option func(*Collection)

// WithStyles sets the path widths.
func WithStyles(s Styles) Option {
	return func(c *Collection) { c.styles = s }
}

// WithLODWorkers limits the number of level-of-detail indexes built in
// parallel. Values below 1 mean runtime.GOMAXPROCS(0).
func WithLODWorkers(n int) Option {
	return func(c *Collection) { c.workers = n }
}

// Stats describes one UpdateContext.
type Stats struct {
	InView  int // activities in view afterwards
	Entered int // in view now but not before
	Left    int // in view before but not now
	Built   int // level-of-detail indexes built
}

// Collection is a set of activities keyed by id.
type Collection struct {
	items map[int64]*activity.Activity
	array []*activity.Activity

	current, last *bitset.BitSet

	styles  Styles
	workers int
	zoom    int

	// OnSelect, if set, is called after an activity's selection changes.
	OnSelect func(a *activity.Activity)
}

// New returns an empty collection.
func New(opts ...Option) *Collection {
	c := &Collection{
		items:   make(map[int64]*activity.Activity),
		current: bitset.New(0),
		last:    bitset.New(0),
		styles:  DefaultStyles,
		zoom:    -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Add builds an activity from spec and inserts it, replacing any activity
// with the same id. Reset must be called after a batch of adds and removes.
func (c *Collection) Add(spec activity.Spec) error {
	a, err := activity.New(spec)
	if err != nil {
		return fmt.Errorf("collection: %w", err)
	}
	c.AddActivity(a)
	return nil
}

// AddActivity inserts a, replacing any activity with the same id. Reset must
// be called after a batch of adds and removes.
func (c *Collection) AddActivity(a *activity.Activity) {
	a.OnSelect(c.selectChanged)
	c.items[a.ID] = a
}

// Remove deletes the activity with the given id and reports whether it was
// present. Reset must be called after a batch of adds and removes.
func (c *Collection) Remove(id int64) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

// Get returns the activity with the given id.
func (c *Collection) Get(id int64) (*activity.Activity, bool) {
	a, ok := c.items[id]
	return a, ok
}

// Len returns the number of activities.
func (c *Collection) Len() int {
	return len(c.items)
}

// Items returns the dense array as of the last Reset. Items()[i].Idx == i.
func (c *Collection) Items() []*activity.Activity {
	return c.array
}

// InView returns the activities in view after the latest UpdateContext.
// The set is owned by the collection and must not be modified.
func (c *Collection) InView() *bitset.BitSet {
	return c.current
}

// LastInView returns the activities in view before the latest UpdateContext.
// The set is owned by the collection and must not be modified.
func (c *Collection) LastInView() *bitset.BitSet {
	return c.last
}

// SetStyles changes the path widths used by later draws.
func (c *Collection) SetStyles(s Styles) {
	c.styles = s
}

// Zoom returns the zoom of the latest UpdateContext, or -1.
func (c *Collection) Zoom() int {
	return c.zoom
}

// Reset assigns dot colors, rebuilds the dense array and every Idx, clears
// all segment masks and resizes both view sets. Call it after adding or
// removing activities.
func (c *Collection) Reset() {
	palette := MakePalette(len(c.items))

	c.array = c.array[:0]
	for _, a := range c.items {
		c.array = append(c.array, a)
	}
	// map order is random; keep draw order stable across resets
	slices.SortFunc(c.array, func(a, b *activity.Activity) int {
		return cmp.Compare(a.ID, b.ID)
	})

	for i, a := range c.array {
		a.Idx = i
		a.Colors.Dot = palette[i]
	}
	c.ResetSegMasks()
	c.current.Resize(len(c.array))
	c.last.Resize(len(c.array))
	c.current.Clear()
	c.last.Clear()

	slogger().Info("collection: reset", "activities", len(c.array))
}

// ResetSegMasks empties every segment mask so the next UpdateContext starts
// from scratch.
func (c *Collection) ResetSegMasks() {
	for _, a := range c.array {
		a.ResetSegMask()
	}
}

// UpdateContext recomputes which activities are in viewport (zoom-0 world
// pixels) at zoom.
//
// Bounding boxes are tested first. Level-of-detail indexes missing for zoom
// are then built in parallel, and UpdateContext waits for all of them before
// refining segment masks, so callers never see a partial state. Activities
// with no segment in view are dropped from the in-view set.
//
// The context is only checked before any state changes; once started, the
// update runs to completion.
func (c *Collection) UpdateContext(ctx context.Context, viewport geom.Rect, zoom int) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, fmt.Errorf("collection: update context: %w", err)
	}

	c.current, c.last = c.last, c.current
	c.current.Clear()
	c.zoom = zoom

	var pending []*activity.Activity
	for i, a := range c.array {
		if !viewport.Overlaps(a.PxBounds()) {
			continue
		}
		c.current.Add(i)
		if !a.HasIdxSet(zoom) {
			pending = append(pending, a)
		}
	}

	if len(pending) > 0 {
		var g errgroup.Group
		g.SetLimit(c.workers)
		for _, a := range pending {
			g.Go(func() error {
				a.MakeIdxSet(zoom)
				return nil
			})
		}
		_ = g.Wait() // builders never fail
	}

	c.current.ForEach(func(i int) {
		if !c.array[i].UpdateSegMask(viewport, zoom) {
			c.current.Remove(i)
		}
	})

	st := Stats{InView: c.current.Count(), Built: len(pending)}
	for i := range c.current.All() {
		if !c.last.Has(i) {
			st.Entered++
		}
	}
	for i := range c.last.All() {
		if !c.current.Has(i) {
			st.Left++
		}
	}
	slogger().Debug("collection: update context",
		"zoom", zoom, "in_view", st.InView, "entered", st.Entered,
		"left", st.Left, "built", st.Built)
	return st, nil
}

// Untransformer maps a screen rectangle to zoom-0 world pixels.
type Untransformer interface {
	UntransformRect(r image.Rectangle) geom.Rect
}

// InPxBounds returns the in-view activities with at least one visible point
// inside the screen rectangle r. Each call returns a fresh sequence.
func (c *Collection) InPxBounds(u Untransformer, r image.Rectangle) iter.Seq[*activity.Activity] {
	return func(yield func(*activity.Activity) bool) {
		world := u.UntransformRect(r)
		for i := range c.current.All() {
			a := c.array[i]
			if a.AnyPointIn(world) && !yield(a) {
				return
			}
		}
	}
}

func (c *Collection) selectChanged(a *activity.Activity) {
	slogger().Debug("collection: selection changed", "id", a.ID, "selected", a.Selected())
	if c.OnSelect != nil {
		c.OnSelect(a)
	}
}
