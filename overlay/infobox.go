// Package overlay renders the debug info box: average frame delay, frame
// rate and the number of primitives in the last frame.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Samples is the number of frame delays averaged.
const Samples = 20

// Box layout.
const (
	Width   = 200
	padding = 5
)

// Background is the box fill color.
var Background = color.NRGBA{R: 50, G: 50, B: 240, A: 153}

// InfoBox keeps a rolling average of frame delays and renders it with the
// latest primitive count. The text only changes when the rounded values do.
type InfoBox struct {
	printer *message.Printer
	face    font.Face

	ring [Samples]time.Duration
	n    int // samples recorded, up to Samples
	next int
	sum  time.Duration

	ms, count int
	text      string
	img       *image.RGBA
}

// New returns an empty info box formatting numbers for tag.
func New(tag language.Tag) *InfoBox {
	face := basicfont.Face7x13
	h := face.Metrics().Height.Ceil() + 2*padding
	return &InfoBox{
		printer: message.NewPrinter(tag),
		face:    face,
		ms:      -1,
		count:   -1,
		img:     image.NewRGBA(image.Rect(0, 0, Width, h)),
	}
}

// Update records one frame and reports whether the text changed.
// Nothing is shown until Samples frames have been recorded.
func (b *InfoBox) Update(frameDelay time.Duration, count int) bool {
	if b.n == Samples {
		b.sum -= b.ring[b.next]
	} else {
		b.n++
	}
	b.ring[b.next] = frameDelay
	b.sum += frameDelay
	b.next = (b.next + 1) % Samples
	if b.n < Samples {
		return false
	}

	ms := int(math.Round(float64(b.sum) / float64(time.Millisecond) / Samples))
	rounded := 10 * int(math.Round(float64(count)/10))
	if ms == b.ms && rounded == b.count {
		return false
	}
	b.ms, b.count = ms, rounded

	fps := 0
	if ms > 0 {
		fps = int(math.Round(1000 / float64(ms)))
	}
	b.text = b.printer.Sprintf("%d ms (%d fps), %d pts", ms, fps, rounded)
	b.render()
	return true
}

// Text returns the current text, empty until enough frames were recorded.
func (b *InfoBox) Text() string {
	return b.text
}

// Image returns the rendered box. It is redrawn by Update when the text
// changes.
func (b *InfoBox) Image() *image.RGBA {
	return b.img
}

func (b *InfoBox) render() {
	draw.Draw(b.img, b.img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  b.img,
		Src:  image.White,
		Face: b.face,
		Dot:  fixed.P(padding, padding+b.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(b.text)
}
