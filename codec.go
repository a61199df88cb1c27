// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	// Register the decoders accepted by StandardCodec.Decode.
	_ "image/gif"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageCodec decodes raster image bytes into pixels and encodes pixels back
// into raster image bytes.
type ImageCodec interface {
	// Decode returns the pixels of an encoded image. It fails with an
	// ErrDecode error when data is not a supported image.
	Decode(data []byte) (*PixelBuffer, error)

	// Encode returns buf as an encoded raster image.
	Encode(buf *PixelBuffer) ([]byte, error)
}

// OutputFormat selects the raster format written by StandardCodec.Encode.
type OutputFormat string

const (
	// FormatPNG writes lossless PNG images.
	FormatPNG OutputFormat = "png"
	// FormatJPEG writes lossy JPEG images.
	FormatJPEG OutputFormat = "jpeg"
)

// MIMEType returns the media type of the format.
func (f OutputFormat) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// Extension returns the conventional file extension of the format.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	default:
		return ".png"
	}
}

const (
	// DefaultJPEGQuality is used when StandardCodec.JPEGQuality is zero.
	DefaultJPEGQuality = 90

	// DefaultMaxEdge is the bound commonly used for downscaling large images.
	DefaultMaxEdge = 2048
)

// StandardCodec implements ImageCodec using the Go image packages. It
// decodes PNG, JPEG, GIF, WebP, BMP and TIFF and encodes PNG or JPEG.
type StandardCodec struct {
	// Format is the output format of Encode. Empty means FormatPNG.
	Format OutputFormat

	// JPEGQuality is the JPEG quality (1-100). Zero means DefaultJPEGQuality.
	JPEGQuality int

	// PNGCompression is the PNG compression level.
	PNGCompression png.CompressionLevel

	// MaxWidth and MaxHeight bound decoded images. When either bound is
	// exceeded the image is scaled down, keeping its aspect ratio, before
	// pixels are extracted. Zero disables the bound.
	MaxWidth  int
	MaxHeight int
}

// Decode decodes an image and extracts its pixels. Images whose header
// declares more than DefaultMaxPixels pixels are rejected.
func (c *StandardCodec) Decode(data []byte) (*PixelBuffer, error) {
	return c.DecodeLimit(data, DefaultMaxPixels)
}

// DecodeLimit behaves like Decode but rejects, with an ErrValidation error,
// images whose header declares a width or height above MaxDimension or an
// area above maxPixels. The header is checked before the raster is
// allocated. A maxPixels of zero or less disables the area check.
func (c *StandardCodec) DecodeLimit(data []byte, maxPixels int) (*PixelBuffer, error) {
	if len(data) == 0 {
		return nil, decodeError("StandardCodec.Decode", "image data is empty", nil)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError("StandardCodec.Decode", "failed to decode image header", err)
	}
	if err := newInputValidator().ValidateDimensions(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, validationError("StandardCodec.Decode", "image header rejected", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError("StandardCodec.Decode", "failed to decode image", err)
	}

	return FromImage(c.fit(img)), nil
}

// LimitedDecoder is implemented by codecs that can bound the size of the
// images they decode before allocating them.
type LimitedDecoder interface {
	DecodeLimit(data []byte, maxPixels int) (*PixelBuffer, error)
}

// decodeLimit decodes data with codec, honoring maxPixels when the codec
// implements LimitedDecoder.
func decodeLimit(codec ImageCodec, data []byte, maxPixels int) (*PixelBuffer, error) {
	if ld, ok := codec.(LimitedDecoder); ok {
		return ld.DecodeLimit(data, maxPixels)
	}
	return codec.Decode(data)
}

// fit downscales img when it exceeds the configured bounds.
func (c *StandardCodec) fit(img image.Image) image.Image {
	b := img.Bounds()
	w, h := fitDimensions(b.Dx(), b.Dy(), c.MaxWidth, c.MaxHeight)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Lanczos3) // #nosec G115 - fitDimensions returns positive values
}

// fitDimensions scales (w, h) down by a single ratio so that it fits within
// (maxW, maxH). A zero bound leaves that axis unconstrained.
func fitDimensions(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	ratio := 1.0
	if maxW > 0 && w > maxW {
		ratio = math.Min(ratio, float64(maxW)/float64(w))
	}
	if maxH > 0 && h > maxH {
		ratio = math.Min(ratio, float64(maxH)/float64(h))
	}
	if ratio >= 1.0 {
		return w, h
	}
	nw := int(math.Round(float64(w) * ratio))
	nh := int(math.Round(float64(h) * ratio))
	return max(nw, 1), max(nh, 1)
}

// Encode encodes buf in the configured output format.
func (c *StandardCodec) Encode(buf *PixelBuffer) ([]byte, error) {
	if buf == nil {
		return nil, encodingError("StandardCodec.Encode", "pixel buffer cannot be nil", nil)
	}

	img := buf.Image()
	var out bytes.Buffer

	switch c.format() {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: c.PNGCompression}
		if err := enc.Encode(&out, img); err != nil {
			return nil, encodingError("StandardCodec.Encode", "failed to encode PNG", err)
		}
	case FormatJPEG:
		quality := c.JPEGQuality
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, encodingError("StandardCodec.Encode", "failed to encode JPEG", err)
		}
	default:
		return nil, unsupportedError("StandardCodec.Encode",
			fmt.Sprintf("output format %q", c.Format), nil)
	}

	return out.Bytes(), nil
}

func (c *StandardCodec) format() OutputFormat {
	if c.Format == "" {
		return FormatPNG
	}
	return c.Format
}

// DecodeBase64Image decodes a base64 image with codec. s may be a bare
// payload or a data URL ("data:image/png;base64,...").
func DecodeBase64Image(codec ImageCodec, s string) (*PixelBuffer, error) {
	data, err := DecodeBase64(s)
	if err != nil {
		return nil, err
	}
	if codec == nil {
		codec = &StandardCodec{}
	}
	return codec.Decode(data)
}

// DecodeBase64 decodes image bytes from a base64 payload or data URL.
// Whitespace is ignored and both the standard and URL alphabets are
// accepted, padded or not.
func DecodeBase64(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ",")
		if i < 0 {
			return nil, decodeError("DecodeBase64", "malformed data URL", nil)
		}
		payload = payload[i+1:]
	}
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, payload)

	if payload == "" {
		return nil, decodeError("DecodeBase64", "base64 payload is empty", nil)
	}

	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, decodeError("DecodeBase64", "invalid base64 payload", lastErr)
}
