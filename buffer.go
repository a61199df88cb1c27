// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"image"
	"image/draw"
)

// PixelBuffer is a row-major (left-to-right, top-to-bottom) sequence of
// pixels with its dimensions. For buffers produced by this package
// len(Pixels) == Width*Height.
type PixelBuffer struct {
	Width  int
	Height int
	Pixels []Pixel
}

// NewPixelBuffer returns a buffer of width*height transparent pixels.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Pixel, width*height),
	}
}

// Len returns the number of pixels in the buffer.
func (b *PixelBuffer) Len() int {
	return len(b.Pixels)
}

// At returns the pixel at (x, y). Coordinates outside the buffer yield Transparent.
func (b *PixelBuffer) At(x, y int) Pixel {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return Transparent
	}
	i := y*b.Width + x
	if i >= len(b.Pixels) {
		return Transparent
	}
	return b.Pixels[i]
}

// FromImage copies any image.Image into a PixelBuffer. The source bounds
// are rebased so the first pixel is the image's top-left corner.
func FromImage(src image.Image) *PixelBuffer {
	nrgba := toNRGBA(src)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	buf := NewPixelBuffer(w, h)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			o := x * 4
			buf.Pixels[y*w+x] = Pixel{R: row[o], G: row[o+1], B: row[o+2], A: row[o+3]}
		}
	}
	return buf
}

// toNRGBA returns src as an *image.NRGBA with bounds starting at (0,0).
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Image renders the buffer as an *image.NRGBA. Missing trailing pixels are
// left transparent; extra pixels are ignored.
func (b *PixelBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	n := b.Width * b.Height
	if len(b.Pixels) < n {
		n = len(b.Pixels)
	}
	for i := 0; i < n; i++ {
		p := b.Pixels[i]
		o := i * 4
		img.Pix[o] = p.R
		img.Pix[o+1] = p.G
		img.Pix[o+2] = p.B
		img.Pix[o+3] = p.A
	}
	return img
}
