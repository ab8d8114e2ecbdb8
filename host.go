package dotlayer

import (
	"image"

	"github.com/gogpu/dotlayer/surface"
	"github.com/gogpu/dotlayer/viewbox"
)

// Pane identifies a stacking level on the host map.
type Pane int

// Panes from bottom to top.
const (
	PanePaths Pane = iota
	PaneDots
	PaneDebug
	PaneControl
)

func (p Pane) String() string {
	switch p {
	case PanePaths:
		return "paths"
	case PaneDots:
		return "dots"
	case PaneDebug:
		return "debug"
	case PaneControl:
		return "control"
	}
	return "unknown"
}

// ZoomEvent describes a zoom step. Only pinch and fly-to zooms trigger an
// immediate redraw; ordinary zooms end with a MoveEnd.
type ZoomEvent struct {
	Pinch bool
	FlyTo bool
}

// Events are the callbacks a Host invokes. A Host may call them from any
// goroutine.
type Events struct {
	Move    func()
	MoveEnd func()
	Zoom    func(ZoomEvent)
	Resize  func()
}

// Host is the slippy map a Layer draws on.
type Host interface {
	viewbox.Host

	// AddSurface creates a surface of the given size stacked in pane.
	AddSurface(pane Pane, size image.Point) (surface.Surface, error)
	// RemoveSurface detaches a surface created by AddSurface.
	RemoveSurface(s surface.Surface)
	// Subscribe registers ev and returns a function that unregisters it.
	Subscribe(ev Events) (unsubscribe func())
}
