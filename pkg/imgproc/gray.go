package imgproc

import (
	"image"
	"image/color"
)

// Gray is a single-channel raster. Every transform in this package reads one
// Gray and writes a fresh one; buffers are never aliased between stages.
type Gray struct {
	W, H int
	Pix  []uint8
}

// NewGray allocates a w*h buffer initialized to white (255).
func NewGray(w, h int) *Gray {
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = 255
	}
	return &Gray{W: w, H: h, Pix: pix}
}

func (g *Gray) At(x, y int) uint8 { return g.Pix[y*g.W+x] }

func (g *Gray) Set(x, y int, v uint8) { g.Pix[y*g.W+x] = v }

// Degenerate reports whether the raster has no usable area.
func (g *Gray) Degenerate() bool {
	return g == nil || g.W <= 0 || g.H <= 0 || len(g.Pix) < g.W*g.H
}

// FromImage converts any decoded image to Gray using the standard luma
// weights 0.299R + 0.587G + 0.114B.
func FromImage(img image.Image) *Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &Gray{W: w, H: h, Pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, gg, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// RGBA returns 16-bit channels
			luma := 0.299*float64(r>>8) + 0.587*float64(gg>>8) + 0.114*float64(bb>>8)
			out.Pix[y*w+x] = uint8(luma + 0.5)
		}
	}
	return out
}

// ToImage renders the raster as an NRGBA image for encoding/saving.
func (g *Gray) ToImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, g.W, g.H))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v := g.Pix[y*g.W+x]
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
