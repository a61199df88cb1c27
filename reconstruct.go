// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"math"
)

// InferDimensions returns a square-ish canvas for total pixels:
// width = ceil(sqrt(total)), height = ceil(total / width).
func InferDimensions(total int) (width, height int) {
	if total <= 0 {
		return 0, 0
	}
	width = int(math.Ceil(math.Sqrt(float64(total))))
	height = (total + width - 1) / width
	return width, height
}

// CanvasDimensions returns the dimensions used to reconstruct total
// pixels. When either width or height is not positive both are inferred.
func CanvasDimensions(total, width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		return InferDimensions(total)
	}
	return width, height
}

// Normalize returns exactly width*height pixels: excess pixels are
// dropped and a shortfall is padded with White.
func Normalize(pixels []Pixel, width, height int) (out []Pixel, padded, truncated int) {
	expected := max(width, 0) * max(height, 0)
	out = make([]Pixel, expected)
	n := copy(out, pixels)
	for i := n; i < expected; i++ {
		out[i] = White
	}
	return out, expected - n, len(pixels) - n
}

// Reconstruction is a pixel buffer rebuilt from resolved pixels.
type Reconstruction struct {
	Buffer *PixelBuffer

	// Padded is the number of White pixels appended.
	Padded int

	// Truncated is the number of supplied pixels dropped.
	Truncated int
}

// Reconstruct builds a width×height buffer from pixels, inferring the
// canvas when a dimension is unknown. Channel values were already clamped
// into [0,255] when the document was decoded. Reconstruct never fails.
func Reconstruct(pixels []Pixel, width, height int) *Reconstruction {
	w, h := CanvasDimensions(len(pixels), width, height)
	out, padded, truncated := Normalize(pixels, w, h)
	return &Reconstruction{
		Buffer:    &PixelBuffer{Width: w, Height: h, Pixels: out},
		Padded:    padded,
		Truncated: truncated,
	}
}

// ReconstructImage reconstructs pixels and encodes the result with codec.
// Only the codec's encoder can fail.
func ReconstructImage(codec ImageCodec, pixels []Pixel, width, height int) ([]byte, *Reconstruction, error) {
	rec := Reconstruct(pixels, width, height)
	if codec == nil {
		codec = &StandardCodec{}
	}
	img, err := codec.Encode(rec.Buffer)
	if err != nil {
		return nil, rec, err
	}
	return img, rec, nil
}
