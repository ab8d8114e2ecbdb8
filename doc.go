// Package dotlayer animates GPS tracks as moving dots over a slippy map.
//
// # Overview
//
// A Layer draws two stacked pixel buffers on top of a host map: one with
// the track paths and one with dots that travel along them in accelerated
// track time. Only the activities whose geometry overlaps the viewport are
// considered, and each is drawn from a simplified copy of its points chosen
// for the current zoom.
//
// # Quick Start
//
//	l, err := dotlayer.New(dotlayer.DefaultParams())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, spec := range specs {
//	    if err := l.Add(spec); err != nil {
//	        log.Print(err)
//	    }
//	}
//	if err := l.Attach(ctx, host); err != nil {
//	    log.Fatal(err)
//	}
//
// Attach resets the layer; after later batches of Add or Remove call Reset.
//
// # Redraws
//
// The host reports pans, zooms and resizes through the Events passed to
// Host.Subscribe. A pan that ends without a zoom change shifts the existing
// path pixels and draws only the strips that scrolled into view. A zoom
// change or a forced redraw clears both buffers and repaints them.
//
// Redraws and animation frames never interleave: a redraw requested while
// another one, or a frame, is drawing waits for it to complete.
//
// # Animation
//
// While not paused the layer draws dots on refreshes delivered by its
// FrameSource, capped at the target frame rate. Pause freezes animation
// time and Animate resumes it from the same phase.
//
// # Logging
//
// dotlayer is silent by default. Call SetLogger to receive diagnostics.
package dotlayer
