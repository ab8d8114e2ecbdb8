// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// FormatProvider reports the presentation format of a GPU device.
// gpucontext.DeviceProvider satisfies it.
type FormatProvider interface {
	SurfaceFormat() gputypes.TextureFormat
}

var _ FormatProvider = gpucontext.DeviceProvider(nil)

// TextureSurface stages composited pixels and uploads them to a GPU texture
// on Flush. Only flushes that follow a Composite upload anything.
//
// The texture is created by the host (typically with
// gpucontext.TextureCreator) at the surface size; after Resize the host
// must supply a new one with SetTexture.
type TextureSurface struct {
	format  gputypes.TextureFormat
	staging *image.RGBA
	tex     gpucontext.TextureUpdater
	dirty   bool
	closed  bool
}

// NewTextureSurface returns a surface uploading into tex. The staging layout
// follows the provider's surface format: BGRA8Unorm devices get swizzled
// pixels, everything else RGBA.
func NewTextureSurface(provider FormatProvider, tex gpucontext.TextureUpdater, size image.Point) (*TextureSurface, error) {
	if size.X < 0 || size.Y < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, size.X, size.Y)
	}
	format := gputypes.TextureFormatRGBA8Unorm
	if provider != nil && provider.SurfaceFormat() == gputypes.TextureFormatBGRA8Unorm {
		format = gputypes.TextureFormatBGRA8Unorm
	}
	return &TextureSurface{
		format:  format,
		staging: image.NewRGBA(image.Rectangle{Max: size}),
		tex:     tex,
	}, nil
}

// Composite implements Surface.
func (s *TextureSurface) Composite(src *image.RGBA, r image.Rectangle) error {
	r, err := checkComposite(s.closed, s.staging.Bounds().Size(), src, r)
	if err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	swap := s.format == gputypes.TextureFormatBGRA8Unorm
	n := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		so := src.PixOffset(r.Min.X, y)
		do := s.staging.PixOffset(r.Min.X, y)
		dst := s.staging.Pix[do : do+n]
		copy(dst, src.Pix[so:so+n])
		if swap {
			for i := 0; i < n; i += 4 {
				dst[i], dst[i+2] = dst[i+2], dst[i]
			}
		}
	}
	s.dirty = true
	return nil
}

// Flush uploads the staging buffer if anything was composited since the
// last upload.
func (s *TextureSurface) Flush() error {
	if s.closed {
		return ErrClosed
	}
	if !s.dirty {
		return nil
	}
	if s.tex == nil {
		return ErrNilTexture
	}
	if err := s.tex.UpdateData(s.staging.Pix); err != nil {
		return fmt.Errorf("surface: texture update failed: %w", err)
	}
	s.dirty = false
	return nil
}

// Dirty reports whether composited pixels await upload.
func (s *TextureSurface) Dirty() bool {
	return s.dirty
}

// SetTexture replaces the upload target and marks the surface dirty.
func (s *TextureSurface) SetTexture(tex gpucontext.TextureUpdater) {
	s.tex = tex
	s.dirty = true
}

// Size implements Surface.
func (s *TextureSurface) Size() image.Point {
	return s.staging.Bounds().Size()
}

// Resize implements Surface. The old texture no longer fits and is dropped.
func (s *TextureSurface) Resize(size image.Point) error {
	if s.closed {
		return ErrClosed
	}
	if size.X < 0 || size.Y < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, size.X, size.Y)
	}
	if size == s.Size() {
		return nil
	}
	s.staging = image.NewRGBA(image.Rectangle{Max: size})
	s.tex = nil
	s.dirty = true
	return nil
}

// Format implements Surface.
func (s *TextureSurface) Format() gputypes.TextureFormat {
	return s.format
}

// Close implements Surface.
func (s *TextureSurface) Close() error {
	s.closed = true
	s.tex = nil
	return nil
}
