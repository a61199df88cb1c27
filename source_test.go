// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveDoc(t *testing.T, doc string, w, h int) (*Resolved, error) {
	t.Helper()
	src, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	return ResolvePixels(src, w, h)
}

// TestSource_ParseDocumentKinds tests source detection for each document shape.
func TestSource_ParseDocumentKinds(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		kind       SourceKind
		sourceType string
	}{
		{"bare array", `[{"r":1}]`, SourceArray, "array"},
		{"pixels raw", `{"pixels":{"data":[{"r":1}],"width":1,"height":1}}`, SourcePixels, "pixels:data"},
		{"pixels compressed", `{"pixels":{"compressed":true,"data":[]}}`, SourcePixels, "pixels:compressed"},
		{"data raw", `{"data":[{"r":1}]}`, SourceData, "data"},
		{"data compressed", `{"compressed":1,"data":[]}`, SourceData, "data:compressed"},
		{"fractional zero is raw", `{"compressed":0.0,"data":[]}`, SourceData, "data"},
		{"negative zero is raw", `{"pixels":{"compressed":-0,"data":[]}}`, SourcePixels, "pixels:data"},
		{"exponent zero is raw", `{"compressed":0e0,"data":[]}`, SourceData, "data"},
		{"fraction is compressed", `{"compressed":0.5,"data":[]}`, SourceData, "data:compressed"},
		{"zero string is compressed", `{"compressed":"0","data":[]}`, SourceData, "data:compressed"},
		{"base64 only", `{"base64":"AAAA"}`, SourceBase64, "base64"},
		{"metadata only", `{"metadata":{"width":2,"height":2}}`, SourceNone, "none"},
		{"pixels not an object", `{"pixels":[1,2],"data":[{"r":1}]}`, SourceData, "data"},
		{"pixels data not an array", `{"pixels":{"data":"x"},"data":[{"r":1}]}`, SourceData, "data"},
		{"empty pixels data wins over data", `{"pixels":{"data":[]},"data":[{"r":1}]}`, SourcePixels, "pixels:data"},
		{"scalar", `42`, SourceNone, "none"},
		{"null", `null`, SourceNone, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ParseDocument([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, src.Kind)
			assert.Equal(t, tt.sourceType, src.SourceType())
		})
	}
}

// TestSource_ParseDocumentErrors tests rejection of malformed JSON.
func TestSource_ParseDocumentErrors(t *testing.T) {
	for _, doc := range []string{"", "   ", "{", `{"pixels":`} {
		_, err := ParseDocument([]byte(doc))
		assert.True(t, IsPixelError(err, ErrValidation), "document %q", doc)
	}

	_, err := ParseDocument([]byte(`{"pixels":{"compressed":true,"data":[]},"x":1}`))
	require.NoError(t, err)
}

// TestSource_PixelsDataRaw tests raw pixels under the pixels section.
func TestSource_PixelsDataRaw(t *testing.T) {
	res, err := resolveDoc(t, `{"pixels":{"compressed":false,"width":2,"height":1,
		"data":[{"r":255,"g":0,"b":0,"a":255},{"r":0,"g":0,"b":255}]}}`, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Pixel{red, blue}, res.Pixels)
	assert.Equal(t, 2, res.Width)
	assert.Equal(t, 1, res.Height)
	assert.Equal(t, "pixels:data", res.SourceType)
}

// TestSource_PixelsDataCompressed tests run-length pixels under the pixels section.
func TestSource_PixelsDataCompressed(t *testing.T) {
	res, err := resolveDoc(t, `{"pixels":{"compressed":true,"width":3,"height":1,
		"data":[{"color":{"r":255,"g":0,"b":0,"a":255},"count":2},{"color":{"r":0,"g":0,"b":255,"a":255}}]}}`, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Pixel{red, red, blue}, res.Pixels)
	assert.Equal(t, "pixels:compressed", res.SourceType)
}

// TestSource_TopLevelData tests pixels stored in top-level data.
func TestSource_TopLevelData(t *testing.T) {
	res, err := resolveDoc(t, `{"width":1,"height":2,"compressed":true,
		"data":[{"color":{"r":0,"g":255,"b":0},"count":2}]}`, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Pixel{green, green}, res.Pixels)
	assert.Equal(t, 1, res.Width)
	assert.Equal(t, 2, res.Height)
	assert.Equal(t, "data:compressed", res.SourceType)
}

// TestSource_BareArray tests documents that are a bare pixel array.
func TestSource_BareArray(t *testing.T) {
	res, err := resolveDoc(t, `[{"r":0,"g":255,"b":0},{"r":0,"g":0,"b":255,"a":255}]`, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Pixel{green, blue}, res.Pixels)
	assert.Zero(t, res.Width)
	assert.Zero(t, res.Height)
	assert.Equal(t, "array", res.SourceType)
}

// TestSource_PixelsWinOverBase64 tests that pixel data is used before the base64 image.
func TestSource_PixelsWinOverBase64(t *testing.T) {
	// The base64 payload is invalid, so decoding it would fail.
	res, err := resolveDoc(t, `{"base64":"!!not base64!!","pixels":{"data":[{"r":255,"a":255}]}}`, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Pixel{red}, res.Pixels)
	assert.Equal(t, "pixels:data", res.SourceType)
}

// TestSource_Base64Fallback tests decoding the base64 image when no pixels are present.
func TestSource_Base64Fallback(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString(encodePNG(t, gradient(3, 2)))

	tests := []struct {
		name         string
		doc          string
		wantW, wantH int
	}{
		{"only base64", `{"base64":"` + b64 + `"}`, 3, 2},
		{"empty pixels data keeps stored dimensions", `{"base64":"` + b64 + `","pixels":{"data":[],"width":9,"height":9}}`, 9, 9},
		{"one stored dimension ignored", `{"base64":"` + b64 + `","pixels":{"data":[],"width":9}}`, 3, 2},
		{"empty top-level data", `{"base64":"` + b64 + `","data":[]}`, 3, 2},
		{"data url", `{"base64":"data:image/png;base64,` + b64 + `"}`, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := resolveDoc(t, tt.doc, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, gradient(3, 2).Pixels, res.Pixels)
			assert.Equal(t, tt.wantW, res.Width)
			assert.Equal(t, tt.wantH, res.Height)
			assert.Equal(t, "base64", res.SourceType)
		})
	}
}

// TestSource_Base64FallbackLimit tests that the fallback image header is
// checked against the resolver's pixel limit.
func TestSource_Base64FallbackLimit(t *testing.T) {
	src, err := ParseDocument([]byte(`{"base64":"` + base64.StdEncoding.EncodeToString(pngHeader(20000, 20000)) + `"}`))
	require.NoError(t, err)

	_, err = ResolvePixels(src, 0, 0)
	assert.True(t, IsPixelError(err, ErrValidation), "got %v", err)

	r := &Resolver{MaxPixels: 5}
	src, err = ParseDocument([]byte(`{"base64":"` + base64.StdEncoding.EncodeToString(encodePNG(t, gradient(3, 2))) + `"}`))
	require.NoError(t, err)
	_, err = r.Resolve(src, 0, 0)
	assert.True(t, IsPixelError(err, ErrValidation), "got %v", err)
}

// TestSource_Base64FallbackHints tests hints combined with the base64 image size.
func TestSource_Base64FallbackHints(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString(encodePNG(t, gradient(3, 2)))

	res, err := resolveDoc(t, `{"base64":"`+b64+`"}`, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Width)
	assert.Equal(t, 2, res.Height, "image height fills the missing hint")
}

// TestSource_CorruptBase64 tests corrupt base64 fallbacks.
func TestSource_CorruptBase64(t *testing.T) {
	_, err := resolveDoc(t, `{"base64":"%%%"}`, 0, 0)
	assert.True(t, IsPixelError(err, ErrDecode))

	_, err = resolveDoc(t, `{"base64":"`+base64.StdEncoding.EncodeToString([]byte("text"))+`"}`, 0, 0)
	assert.True(t, IsPixelError(err, ErrDecode))
}

// TestSource_NoPixelData tests documents without any pixel source.
func TestSource_NoPixelData(t *testing.T) {
	for _, doc := range []string{
		`{}`,
		`{"metadata":{"filename":"a.png"}}`,
		`{"pixels":{"data":[]}}`,
		`{"data":[]}`,
		`[]`,
		`"text"`,
		`{"base64":""}`,
	} {
		_, err := resolveDoc(t, doc, 0, 0)
		assert.True(t, IsPixelError(err, ErrNoPixelData), "document %s", doc)
	}

	_, err := ResolvePixels(nil, 0, 0)
	assert.True(t, IsPixelError(err, ErrNoPixelData))
}

// TestSource_Dimensions tests how hints and stored dimensions combine.
func TestSource_Dimensions(t *testing.T) {
	tests := []struct {
		name         string
		doc          string
		w, h         int
		wantW, wantH int
	}{
		{"stored", `{"pixels":{"data":[{}],"width":4,"height":5}}`, 0, 0, 4, 5},
		{"hints override", `{"pixels":{"data":[{}],"width":4,"height":5}}`, 2, 3, 2, 3},
		{"width hint only", `{"pixels":{"data":[{}],"width":4,"height":5}}`, 2, 0, 2, 5},
		{"one stored dimension ignored", `{"pixels":{"data":[{}],"width":4}}`, 0, 0, 0, 0},
		{"one stored dimension with hint", `{"pixels":{"data":[{}],"height":5}}`, 7, 0, 7, 0},
		{"string dimensions", `{"pixels":{"data":[{}],"width":"4","height":"5"}}`, 0, 0, 4, 5},
		{"fractional dimensions", `{"pixels":{"data":[{}],"width":4.9,"height":5.1}}`, 0, 0, 4, 5},
		{"negative dimensions", `{"pixels":{"data":[{}],"width":-4,"height":5}}`, 0, 0, 0, 0},
		{"negative hints ignored", `{"data":[{}],"width":4,"height":5}`, -1, -1, 4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := resolveDoc(t, tt.doc, tt.w, tt.h)
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, res.Width)
			assert.Equal(t, tt.wantH, res.Height)
		})
	}
}

// TestSource_RunExpansionLimit tests the run-length expansion bound.
func TestSource_RunExpansionLimit(t *testing.T) {
	src, err := ParseDocument([]byte(`{"data":[{"color":{},"count":1000},{"color":{},"count":1000}],"compressed":true}`))
	require.NoError(t, err)

	_, err = (&Resolver{MaxPixels: 1500}).Resolve(src, 0, 0)
	assert.True(t, IsPixelError(err, ErrValidation))

	res, err := (&Resolver{}).Resolve(src, 0, 0)
	require.NoError(t, err)
	assert.Len(t, res.Pixels, 2000)
}

// TestSource_KindString tests SourceKind names.
func TestSource_KindString(t *testing.T) {
	assert.Equal(t, "none", SourceNone.String())
	assert.Equal(t, "array", SourceArray.String())
	assert.Equal(t, "pixels", SourcePixels.String())
	assert.Equal(t, "data", SourceData.String())
	assert.Equal(t, "base64", SourceBase64.String())
}
