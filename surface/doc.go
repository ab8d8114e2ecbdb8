// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface provides the display targets a layer composites into.
//
// A layer rasterizes into its own off-screen buffers and, once a frame is
// complete, copies only the changed region onto a Surface. The host decides
// what a surface is:
//
//   - ImageSurface: an *image.RGBA the host draws to screen itself
//     (an ebiten image, a PNG encoder, a test).
//   - TextureSurface: a staging buffer uploaded to a GPU texture through
//     gpucontext on Flush, swizzled to BGRA when the device presents in that
//     format.
//
// # Thread Safety
//
// Surfaces are NOT thread-safe. The layer that owns one serializes access;
// hosts reading an ImageSurface must do so from the same goroutine or under
// the layer's frame lock.
package surface
