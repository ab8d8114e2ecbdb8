// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// ImageSurface is a CPU surface backed by an *image.RGBA.
//
// Example:
//
//	s := surface.NewImageSurface(image.Pt(800, 600))
//	defer s.Close()
//
//	// after the layer composited a frame:
//	screen.WritePixels(s.Image().Pix)
type ImageSurface struct {
	img     *image.RGBA
	version uint64
	closed  bool
}

// NewImageSurface creates a transparent surface of the given size.
// Negative dimensions are treated as zero.
func NewImageSurface(size image.Point) *ImageSurface {
	return &ImageSurface{img: image.NewRGBA(image.Rectangle{Max: nonNegative(size)})}
}

// Composite implements Surface.
func (s *ImageSurface) Composite(src *image.RGBA, r image.Rectangle) error {
	r, err := checkComposite(s.closed, s.img.Bounds().Size(), src, r)
	if err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	draw.Copy(s.img, r.Min, src, r, draw.Src, nil)
	s.version++
	return nil
}

// Flush implements Surface. It does nothing.
func (s *ImageSurface) Flush() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Size implements Surface.
func (s *ImageSurface) Size() image.Point {
	return s.img.Bounds().Size()
}

// Resize implements Surface.
func (s *ImageSurface) Resize(size image.Point) error {
	if s.closed {
		return ErrClosed
	}
	if size.X < 0 || size.Y < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, size.X, size.Y)
	}
	if size == s.Size() {
		return nil
	}
	s.img = image.NewRGBA(image.Rectangle{Max: size})
	s.version++
	return nil
}

// Format implements Surface. ImageSurface stores RGBA.
func (s *ImageSurface) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Close implements Surface.
func (s *ImageSurface) Close() error {
	s.closed = true
	return nil
}

// Image returns the backing image. It is replaced by Resize.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Version increases every time the surface content changes, so hosts can
// skip re-uploading an unchanged image.
func (s *ImageSurface) Version() uint64 {
	return s.version
}

// Snapshot returns a copy of the surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

func nonNegative(p image.Point) image.Point {
	return image.Pt(max(0, p.X), max(0, p.Y))
}
