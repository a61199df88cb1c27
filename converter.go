// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxPixels bounds the canvas area and run-length expansion of a
// Converter unless configured otherwise.
const DefaultMaxPixels = 1 << 26

// ConverterConfig configures a Converter. Nil or zero fields take defaults.
type ConverterConfig struct {
	// Codec decodes source images and encodes reconstructed ones.
	// Defaults to a StandardCodec writing PNG.
	Codec ImageCodec

	// Logger receives conversion logs. Defaults to NoOpLogger.
	Logger Logger

	// MaxPixels bounds canvas area, run-length expansion and the size
	// declared by image headers before they are decoded.
	// Defaults to DefaultMaxPixels; a negative value disables the bound.
	MaxPixels int

	// Now returns the time used for metadata timestamps. Defaults to time.Now.
	Now func() time.Time
}

// ConverterOption represents a functional option for configuring a Converter.
type ConverterOption func(*ConverterConfig)

// WithCodec sets the image codec.
func WithCodec(codec ImageCodec) ConverterOption {
	return func(cfg *ConverterConfig) {
		cfg.Codec = codec
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) ConverterOption {
	return func(cfg *ConverterConfig) {
		cfg.Logger = logger
	}
}

// WithMaxPixels sets the pixel bound.
func WithMaxPixels(n int) ConverterOption {
	return func(cfg *ConverterConfig) {
		cfg.MaxPixels = n
	}
}

// WithClock sets the clock used for metadata timestamps.
func WithClock(now func() time.Time) ConverterOption {
	return func(cfg *ConverterConfig) {
		cfg.Now = now
	}
}

// Converter converts images to documents and documents back to images.
// It holds only immutable configuration and is safe for concurrent use.
type Converter struct {
	codec     ImageCodec
	logger    Logger
	maxPixels int
	now       func() time.Time
	validator *InputValidator
}

// NewConverter creates a Converter from cfg. A nil cfg uses all defaults.
func NewConverter(cfg *ConverterConfig) *Converter {
	if cfg == nil {
		cfg = &ConverterConfig{}
	}

	c := &Converter{
		codec:     cfg.Codec,
		logger:    cfg.Logger,
		maxPixels: cfg.MaxPixels,
		now:       cfg.Now,
		validator: newInputValidator(),
	}
	if c.codec == nil {
		c.codec = &StandardCodec{}
	}
	if c.logger == nil {
		c.logger = &NoOpLogger{}
	}
	switch {
	case c.maxPixels == 0:
		c.maxPixels = DefaultMaxPixels
	case c.maxPixels < 0:
		c.maxPixels = 0
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// NewConverterWithOptions creates a Converter using functional options.
// Options are applied in the order they are provided.
//
// Example:
//
//	conv := NewConverterWithOptions(
//		WithLogger(&StandardLogger{}),
//		WithCodec(&StandardCodec{Format: FormatJPEG, JPEGQuality: 85}),
//	)
func NewConverterWithOptions(options ...ConverterOption) *Converter {
	cfg := &ConverterConfig{}
	for _, opt := range options {
		opt(cfg)
	}
	return NewConverter(cfg)
}

// Input is a source image with the file attributes recorded in metadata.
type Input struct {
	// Name is the file name.
	Name string

	// Data holds the encoded image bytes.
	Data []byte

	// Type is the media type, e.g. "image/png". Empty when unknown.
	Type string

	// ModTime is the file modification time. Zero when unknown.
	ModTime time.Time
}

// InputFromFile reads an image file into an Input.
func InputFromFile(path string) (*Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ioError("InputFromFile", "failed to stat image file", err)
	}
	if info.IsDir() {
		return nil, validationError("InputFromFile", fmt.Sprintf("%s is a directory", path), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("InputFromFile", "failed to read image file", err)
	}

	name := filepath.Base(path)
	return &Input{
		Name:    name,
		Data:    data,
		Type:    detectType(name, data),
		ModTime: info.ModTime(),
	}, nil
}

// InputFromBase64 decodes a base64 payload or data URL into an Input.
func InputFromBase64(name, s string) (*Input, error) {
	data, err := DecodeBase64(s)
	if err != nil {
		return nil, err
	}

	typ := ""
	if strings.HasPrefix(s, "data:") {
		header := s[len("data:"):strings.Index(s, ",")]
		typ, _, _ = strings.Cut(header, ";")
	}
	if typ == "" {
		typ = detectType(name, data)
	}
	return &Input{Name: name, Data: data, Type: typ}, nil
}

// detectType returns the media type for a file, preferring its extension
// and falling back to content sniffing for images.
func detectType(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return t
	}
	if t := http.DetectContentType(data); strings.HasPrefix(t, "image/") {
		return t
	}
	return ""
}

// ImageToDocument decodes in and assembles a document according to opts.
// It fails with an ErrDecode error when in is not a supported image and
// with an ErrValidation error when its header declares too many pixels.
func (c *Converter) ImageToDocument(ctx context.Context, in *Input, opts Options) (*ImageDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceledError("Converter.ImageToDocument", err)
	}
	if in == nil {
		return nil, validationError("Converter.ImageToDocument", "input cannot be nil", nil)
	}

	log := c.logger.With(
		Field{Key: "conversion_id", Value: uuid.NewString()},
		Field{Key: "direction", Value: "image_to_json"},
	)

	buf, err := decodeLimit(c.codec, in.Data, c.maxPixels)
	if err != nil {
		log.Error("image decode failed", Field{Key: "file", Value: in.Name}, Field{Key: "error", Value: err})
		return nil, err
	}
	if err := c.validator.ValidateDimensions(buf.Width, buf.Height, c.maxPixels); err != nil {
		log.Error("image rejected", Field{Key: "file", Value: in.Name}, Field{Key: "error", Value: err})
		return nil, err
	}

	var meta *Metadata
	if opts.IncludeMetadata {
		meta = NewMetadata(in.Name, int64(len(in.Data)), in.Type, in.ModTime, buf.Width, buf.Height, c.now())
	}

	var b64 string
	if opts.IncludeBase64 {
		b64 = base64.StdEncoding.EncodeToString(in.Data)
	}

	doc := Serialize(buf, meta, b64, opts)

	fields := []Field{
		{Key: "file", Value: in.Name},
		{Key: "width", Value: buf.Width},
		{Key: "height", Value: buf.Height},
		{Key: "pixels", Value: buf.Len()},
	}
	if rle, ok := encodingOf(doc).(*RLEEncoding); ok {
		fields = append(fields, Field{Key: "runs", Value: len(rle.Runs)})
	}
	log.Info("image converted to document", fields...)

	return doc, nil
}

func encodingOf(doc *ImageDocument) Encoding {
	if doc.Pixels == nil {
		return nil
	}
	return doc.Pixels.Data
}

// Result is the outcome of DocumentToImage.
type Result struct {
	// Image holds the encoded raster image.
	Image []byte

	Width  int
	Height int

	// PixelCount is Width*Height.
	PixelCount int

	// Padded and Truncated report how the resolved pixels were fitted to the canvas.
	Padded    int
	Truncated int

	// SourceType reports where the pixels came from, see Source.SourceType.
	SourceType string
}

// Summary returns a one-line description of the result.
func (r *Result) Summary() string {
	return fmt.Sprintf("Image: %dx%dpx (%d pixels, source: %s)", r.Width, r.Height, r.PixelCount, r.SourceType)
}

// DocumentToImage resolves the pixels of a JSON document and encodes them
// as an image. Positive hints override the dimensions stored in the
// document; with no dimensions the canvas is inferred from the pixel count.
//
// It fails with an ErrNoPixelData error when the document has no pixel
// data and with an ErrDecode error when its base64 fallback is corrupt.
func (c *Converter) DocumentToImage(ctx context.Context, doc []byte, widthHint, heightHint int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceledError("Converter.DocumentToImage", err)
	}
	if err := c.validator.ValidateHints(widthHint, heightHint); err != nil {
		return nil, err
	}

	log := c.logger.With(
		Field{Key: "conversion_id", Value: uuid.NewString()},
		Field{Key: "direction", Value: "json_to_image"},
	)

	src, err := ParseDocument(doc)
	if err != nil {
		log.Error("document rejected", Field{Key: "error", Value: err})
		return nil, err
	}

	resolver := &Resolver{Codec: c.codec, MaxPixels: c.maxPixels}
	resolved, err := resolver.Resolve(src, widthHint, heightHint)
	if err != nil {
		log.Error("pixel resolution failed", Field{Key: "source", Value: src.Kind.String()}, Field{Key: "error", Value: err})
		return nil, err
	}

	w, h := CanvasDimensions(len(resolved.Pixels), resolved.Width, resolved.Height)
	if err := c.validator.ValidateDimensions(w, h, c.maxPixels); err != nil {
		log.Error("canvas rejected", Field{Key: "error", Value: err})
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, canceledError("Converter.DocumentToImage", err)
	}

	img, rec, err := ReconstructImage(c.codec, resolved.Pixels, w, h)
	if err != nil {
		log.Error("image encode failed", Field{Key: "error", Value: err})
		return nil, err
	}

	if rec.Padded > 0 || rec.Truncated > 0 {
		log.Warn("pixel count does not match canvas",
			Field{Key: "supplied", Value: len(resolved.Pixels)},
			Field{Key: "padded", Value: rec.Padded},
			Field{Key: "truncated", Value: rec.Truncated})
	}

	result := &Result{
		Image:      img,
		Width:      rec.Buffer.Width,
		Height:     rec.Buffer.Height,
		PixelCount: rec.Buffer.Len(),
		Padded:     rec.Padded,
		Truncated:  rec.Truncated,
		SourceType: resolved.SourceType,
	}
	log.Info("document converted to image",
		Field{Key: "width", Value: result.Width},
		Field{Key: "height", Value: result.Height},
		Field{Key: "source", Value: result.SourceType})

	return result, nil
}
