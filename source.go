// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"bytes"
	"encoding/json"
)

// SourceKind identifies where a document keeps its pixel data.
type SourceKind int

const (
	// SourceNone means the document has no recognized pixel location.
	SourceNone SourceKind = iota
	// SourceArray means the document itself is an array of pixels.
	SourceArray
	// SourcePixels means the data lives in pixels.data.
	SourcePixels
	// SourceData means the data lives in a top-level data array.
	SourceData
	// SourceBase64 means only an encoded image is available.
	SourceBase64
)

// String returns the string representation of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceArray:
		return "array"
	case SourcePixels:
		return "pixels"
	case SourceData:
		return "data"
	case SourceBase64:
		return "base64"
	default:
		return "none"
	}
}

// Source is a parsed document reduced to the one pixel location that will
// be used, plus the base64 image kept as a fallback.
type Source struct {
	Kind SourceKind

	// Encoding is the pixel payload for SourceArray, SourcePixels and
	// SourceData. It is nil otherwise.
	Encoding Encoding

	// Width and Height are the dimensions stored next to the payload.
	Width  int
	Height int

	// Base64 is the document's encoded image, if any.
	Base64 string
}

// SourceType returns a short label of where pixels come from, such as
// "pixels:compressed" or "data".
func (s *Source) SourceType() string {
	switch s.Kind {
	case SourcePixels, SourceData:
		if s.Encoding != nil && s.Encoding.Compressed() {
			return s.Kind.String() + ":compressed"
		}
		if s.Kind == SourcePixels {
			return "pixels:data"
		}
		return "data"
	default:
		return s.Kind.String()
	}
}

// ParseDocument classifies a JSON document. The first matching location wins:
//  1. the document is an array: raw pixels;
//  2. pixels.data is an array: raw pixels, or runs when pixels.compressed
//     is set, sized by pixels.width and pixels.height; once present, even
//     when empty, the top-level data array is not consulted;
//  3. a top-level data array, with top-level compressed, width and height;
//  4. only a base64 image;
//  5. nothing usable (SourceNone).
//
// A base64 string is recorded on every kind so resolution can fall back to it.
// Only malformed JSON is an error.
func ParseDocument(data []byte) (*Source, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, validationError("ParseDocument", "document is empty", nil)
	}
	if !json.Valid(trimmed) {
		return nil, validationError("ParseDocument", "document is not valid JSON", nil)
	}

	if isArray(trimmed) {
		enc, err := decodeEncoding(trimmed, false)
		if err != nil {
			return nil, err
		}
		return &Source{Kind: SourceArray, Encoding: enc}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || fields == nil {
		// Scalars and null are valid JSON without pixel data.
		return &Source{Kind: SourceNone}, nil
	}

	src := &Source{Kind: SourceNone, Base64: stringField(fields["base64"])}

	var pixels map[string]json.RawMessage
	if err := json.Unmarshal(fields["pixels"], &pixels); err == nil && isArray(pixels["data"]) {
		enc, err := decodeEncoding(pixels["data"], truthy(pixels["compressed"]))
		if err != nil {
			return nil, err
		}
		src.Kind = SourcePixels
		src.Encoding = enc
		src.Width = parseDimension(pixels["width"])
		src.Height = parseDimension(pixels["height"])
		return src, nil
	}

	if isArray(fields["data"]) {
		enc, err := decodeEncoding(fields["data"], truthy(fields["compressed"]))
		if err != nil {
			return nil, err
		}
		src.Kind = SourceData
		src.Encoding = enc
		src.Width = parseDimension(fields["width"])
		src.Height = parseDimension(fields["height"])
		return src, nil
	}

	if src.Base64 != "" {
		src.Kind = SourceBase64
	}
	return src, nil
}

// Resolved holds the pixels chosen from a document and the dimensions
// known for them. Width or Height is zero when no dimension was found.
type Resolved struct {
	Pixels     []Pixel
	Width      int
	Height     int
	SourceType string
}

// Resolver turns a Source into pixels.
type Resolver struct {
	// Codec decodes the base64 fallback. Nil means a default StandardCodec.
	Codec ImageCodec

	// MaxPixels bounds run-length expansion and the declared size of the
	// base64 fallback image. Zero or less disables the bound.
	MaxPixels int
}

// ResolvePixels resolves src with a default StandardCodec and DefaultMaxPixels.
func ResolvePixels(src *Source, widthHint, heightHint int) (*Resolved, error) {
	r := &Resolver{MaxPixels: DefaultMaxPixels}
	return r.Resolve(src, widthHint, heightHint)
}

// Resolve selects the pixels of src.
//
// Positive hints win over dimensions stored in the document; stored
// dimensions are used only when both are non-zero. When the payload is
// missing or empty and the document has a base64 image, that image is
// decoded instead and its dimensions fill any axis still unknown. The
// base64 image is never decoded when the payload has pixels.
//
// It fails with an ErrNoPixelData error when no pixels are found, with an
// ErrDecode error when the base64 fallback cannot be decoded and with an
// ErrValidation error when the fallback image header exceeds MaxPixels.
func (r *Resolver) Resolve(src *Source, widthHint, heightHint int) (*Resolved, error) {
	if src == nil {
		return nil, noPixelDataError("Resolver.Resolve")
	}

	hintW, hintH := max(widthHint, 0), max(heightHint, 0)
	res := &Resolved{Width: hintW, Height: hintH, SourceType: src.SourceType()}

	if src.Encoding != nil {
		pixels, err := r.expand(src.Encoding)
		if err != nil {
			return nil, err
		}
		res.Pixels = pixels
		if src.Width > 0 && src.Height > 0 {
			if res.Width == 0 {
				res.Width = src.Width
			}
			if res.Height == 0 {
				res.Height = src.Height
			}
		}
	}

	if len(res.Pixels) == 0 && src.Base64 != "" {
		data, err := DecodeBase64(src.Base64)
		if err != nil {
			return nil, err
		}
		buf, err := decodeLimit(r.codec(), data, r.MaxPixels)
		if err != nil {
			return nil, err
		}
		res.Pixels = buf.Pixels
		res.SourceType = SourceBase64.String()
		if res.Width == 0 {
			res.Width = buf.Width
		}
		if res.Height == 0 {
			res.Height = buf.Height
		}
	}

	if len(res.Pixels) == 0 {
		return nil, noPixelDataError("Resolver.Resolve")
	}
	return res, nil
}

func (r *Resolver) expand(enc Encoding) ([]Pixel, error) {
	if rle, ok := enc.(*RLEEncoding); ok {
		return DecompressLimit(rle.Runs, r.MaxPixels)
	}
	return enc.Pixels(), nil
}

func (r *Resolver) codec() ImageCodec {
	if r.Codec == nil {
		return &StandardCodec{}
	}
	return r.Codec
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
