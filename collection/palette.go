package collection

import (
	"image/color"
	"math"
)

// Palette saturation and lightness, in [0, 1].
const (
	paletteSaturation = 0.9
	paletteLightness  = 0.55
)

// MakePalette returns n opaque colors with evenly spaced hues.
func MakePalette(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		h := float64(i) / float64(n)
		r, g, b := hslToRGB(h, paletteSaturation, paletteLightness)
		out[i] = color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: 0xff}
	}
	return out
}

// hslToRGB converts a hue in [0, 1) with saturation and lightness in
// [0, 1] to RGB components in [0, 1].
func hslToRGB(h, s, l float64) (r, g, b float64) {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h * 6
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return r + m, g + m, b + m
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
