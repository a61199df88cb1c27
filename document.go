// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the layout of Metadata.Timestamp (ISO-8601, UTC,
// millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Metadata describes the source file of a document. It is informational
// only and never used to reconstruct an image.
type Metadata struct {
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`

	// LastModified is the source modification time in Unix milliseconds.
	LastModified int64 `json:"lastModified"`

	// Timestamp is the document creation time, see TimestampLayout.
	Timestamp string `json:"timestamp"`
}

// NewMetadata builds document metadata for a source file.
func NewMetadata(name string, size int64, mimeType string, modTime time.Time, width, height int, now time.Time) *Metadata {
	var lastModified int64
	if !modTime.IsZero() {
		lastModified = modTime.UnixMilli()
	}
	return &Metadata{
		Filename:     name,
		Width:        width,
		Height:       height,
		Size:         size,
		Type:         mimeType,
		LastModified: lastModified,
		Timestamp:    now.UTC().Format(TimestampLayout),
	}
}

// PixelsField is the "pixels" section of a document.
type PixelsField struct {
	// Data is the pixel payload, raw or run-length encoded.
	Data   Encoding
	Width  int
	Height int
}

type pixelsFieldJSON struct {
	Compressed bool     `json:"compressed"`
	Data       Encoding `json:"data"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
}

// MarshalJSON encodes the section as {compressed, data, width, height}.
func (f *PixelsField) MarshalJSON() ([]byte, error) {
	data := f.Data
	if data == nil {
		data = &RawEncoding{}
	}
	return json.Marshal(pixelsFieldJSON{
		Compressed: data.Compressed(),
		Data:       data,
		Width:      f.Width,
		Height:     f.Height,
	})
}

// UnmarshalJSON decodes the section. Missing or malformed dimensions
// become zero; "compressed" selects the payload representation.
func (f *PixelsField) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return validationError("PixelsField.UnmarshalJSON", "pixels section must be an object", err)
	}

	enc, err := decodeEncoding(fields["data"], truthy(fields["compressed"]))
	if err != nil {
		return err
	}
	f.Data = enc
	f.Width = parseDimension(fields["width"])
	f.Height = parseDimension(fields["height"])
	return nil
}

// decodeEncoding decodes a pixel payload. A missing payload yields an
// empty encoding of the requested kind.
func decodeEncoding(raw json.RawMessage, compressed bool) (Encoding, error) {
	if compressed {
		enc := &RLEEncoding{Runs: []Run{}}
		if len(raw) == 0 {
			return enc, nil
		}
		if err := enc.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return enc, nil
	}

	enc := &RawEncoding{Colors: []Pixel{}}
	if len(raw) == 0 {
		return enc, nil
	}
	if err := enc.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return enc, nil
}

// parseDimension reads a width or height permissively. Numbers are
// truncated, numeric strings accepted, anything else or a negative value
// is zero.
func parseDimension(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ImageDocument is the JSON representation of an image. Sections are
// present only when enabled in the Options used to build the document.
type ImageDocument struct {
	Metadata *Metadata    `json:"metadata,omitempty"`
	Base64   string       `json:"base64,omitempty"`
	Pixels   *PixelsField `json:"pixels,omitempty"`
}

// Options selects the sections written by Serialize.
type Options struct {
	IncludeBase64   bool `json:"include_base64" yaml:"include_base64"`
	IncludePixels   bool `json:"include_pixels" yaml:"include_pixels"`
	IncludeMetadata bool `json:"include_metadata" yaml:"include_metadata"`

	// Compress stores pixels as runs instead of one entry per pixel.
	Compress bool `json:"compress" yaml:"compress"`
}

// DefaultOptions enables every section and leaves compression off.
func DefaultOptions() Options {
	return Options{
		IncludeBase64:   true,
		IncludePixels:   true,
		IncludeMetadata: true,
	}
}

// Serialize assembles a document from extracted pixels. meta and b64 are
// only used when the matching option is set. When meta carries no
// dimensions they are taken from buf.
func Serialize(buf *PixelBuffer, meta *Metadata, b64 string, opts Options) *ImageDocument {
	doc := &ImageDocument{}

	if opts.IncludeMetadata && meta != nil {
		m := *meta
		if buf != nil && m.Width == 0 && m.Height == 0 {
			m.Width, m.Height = buf.Width, buf.Height
		}
		doc.Metadata = &m
	}

	if opts.IncludeBase64 {
		doc.Base64 = b64
	}

	if opts.IncludePixels && buf != nil {
		doc.Pixels = &PixelsField{
			Data:   NewEncoding(buf.Pixels, opts.Compress),
			Width:  buf.Width,
			Height: buf.Height,
		}
	}

	return doc
}

// MarshalDocument encodes doc as JSON, indented by two spaces when indent is set.
func MarshalDocument(doc *ImageDocument, indent bool) ([]byte, error) {
	if doc == nil {
		return nil, encodingError("MarshalDocument", "document cannot be nil", nil)
	}

	var (
		out []byte
		err error
	)
	if indent {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, encodingError("MarshalDocument", "failed to encode document", err)
	}
	return out, nil
}
