// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"image"

	"github.com/gogpu/gputypes"
)

// Common errors returned by surfaces.
var (
	// ErrClosed is returned when a closed surface is used.
	ErrClosed = errors.New("surface: surface is closed")

	// ErrInvalidDimensions is returned for negative sizes.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrNilTexture is returned when a TextureSurface has nothing to upload to.
	ErrNilTexture = errors.New("surface: nil texture")

	// ErrSizeMismatch is returned when a composited buffer does not match
	// the surface size.
	ErrSizeMismatch = errors.New("surface: source size does not match surface")
)

// Surface is a display target for composited pixel regions.
type Surface interface {
	// Composite copies r of src onto the surface at the same position,
	// replacing what was there. src has the size of the surface.
	Composite(src *image.RGBA, r image.Rectangle) error

	// Flush pushes composited pixels to their final destination.
	// For CPU surfaces this is a no-op.
	Flush() error

	// Size returns the surface size in pixels.
	Size() image.Point

	// Resize changes the surface size and clears it.
	Resize(size image.Point) error

	// Format reports the pixel layout of the destination.
	Format() gputypes.TextureFormat

	// Close releases the surface. Close is idempotent.
	Close() error
}

// checkComposite validates a Composite call and returns r clipped to the
// surface.
func checkComposite(closed bool, size image.Point, src *image.RGBA, r image.Rectangle) (image.Rectangle, error) {
	if closed {
		return image.Rectangle{}, ErrClosed
	}
	if src.Bounds().Size() != size {
		return image.Rectangle{}, ErrSizeMismatch
	}
	return r.Intersect(image.Rectangle{Max: size}), nil
}
