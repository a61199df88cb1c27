// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pixeljson "github.com/tenthirtyam/go-pixeljson"
)

func writeTestPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "test.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// TestCLI_EncodeDecodeRoundTrip tests encode and decode through compressed files.
func TestCLI_EncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, 4, 3)
	docPath := filepath.Join(dir, "test.json.zst")

	_, stderr, err := execute(t, "", "encode", src, "-o", docPath, "--compress")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wrote "+docPath)

	raw, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.True(t, pixeljson.IsCompressedDocument(raw))

	_, stderr, err = execute(t, "", "decode", docPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Image: 4x3px (12 pixels, source: pixels:compressed)")

	out, err := os.ReadFile(filepath.Join(dir, "test.png"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}

// TestCLI_EncodeToStdout tests writing a document to standard output.
func TestCLI_EncodeToStdout(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, 2, 2)

	stdout, _, err := execute(t, "", "encode", src, "--base64=false", "--metadata=false", "--compact")
	require.NoError(t, err)
	assert.JSONEq(t, `{"pixels":{"data":[
		{"r":0,"g":0,"b":200,"a":255},{"r":40,"g":0,"b":200,"a":255},
		{"r":0,"g":40,"b":200,"a":255},{"r":40,"g":40,"b":200,"a":255}],
		"width":2,"height":2,"compressed":false}}`, stdout)
}

// TestCLI_DecodeFromStdin tests reading a document from standard input.
func TestCLI_DecodeFromStdin(t *testing.T) {
	doc := `[{"r":255,"g":0,"b":0,"a":255},{"r":0,"g":255,"b":0}]`

	stdout, stderr, err := execute(t, doc, "decode", "-", "--width", "2", "--height", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Image: 2x1px (2 pixels, source: array)")

	img, err := png.Decode(strings.NewReader(stdout))
	require.NoError(t, err)
	r, g, _, a := img.At(1, 0).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), a)
}

// TestCLI_DecodeNoPixelData tests decoding a document without pixels.
func TestCLI_DecodeNoPixelData(t *testing.T) {
	_, _, err := execute(t, `{"metadata":{}}`, "decode", "-")
	require.Error(t, err)
	assert.True(t, pixeljson.IsPixelError(err, pixeljson.ErrNoPixelData))
}

// TestCLI_DecodeInvalidFormat tests rejection of unknown output formats.
func TestCLI_DecodeInvalidFormat(t *testing.T) {
	_, _, err := execute(t, `[]`, "decode", "-", "--format", "gif")
	require.Error(t, err)
	assert.True(t, pixeljson.IsPixelError(err, pixeljson.ErrConfiguration))
}

// TestCLI_Text tests the text converters.
func TestCLI_Text(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"hex argument", []string{"text", "hex", "Hi"}, "", "4869\n"},
		{"unhex stdin", []string{"text", "unhex", "-"}, "4869\n", "Hi\n"},
		{"base64 implicit stdin", []string{"text", "base64"}, "hello", "aGVsbG8=\n"},
		{"minify", []string{"text", "minify", `{ "a": 1 }`}, "", "{\"a\":1}\n"},
		{"csv2json", []string{"text", "csv2json", "a\n1"}, "", "[\n  {\n    \"a\": \"1\"\n  }\n]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

// TestCLI_TextUnknownMode tests rejection of unknown text modes.
func TestCLI_TextUnknownMode(t *testing.T) {
	_, _, err := execute(t, "", "text", "rot13", "abc")
	require.Error(t, err)
	assert.True(t, pixeljson.IsPixelError(err, pixeljson.ErrUnsupported))
}

// TestConfig_Load tests loading a YAML configuration file.
func TestConfig_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pixeljson.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
include_base64: false
compress: true
max_width: 512
output_format: jpeg
jpeg_quality: 75
log_level: debug
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.IncludeBase64)
	assert.True(t, cfg.IncludePixels)
	assert.True(t, cfg.IncludeMetadata)
	assert.True(t, cfg.Compress)
	assert.Equal(t, 512, cfg.MaxWidth)

	codec := cfg.Codec()
	assert.Equal(t, pixeljson.FormatJPEG, codec.Format)
	assert.Equal(t, 75, codec.JPEGQuality)
}

// TestConfig_Defaults tests the default configuration.
func TestConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

// TestConfig_Invalid tests rejection of invalid configuration.
func TestConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "compress: [\n"},
		{"bad format", "output_format: gif\n"},
		{"bad quality", "jpeg_quality: 101\n"},
		{"bad level", "log_level: loud\n"},
		{"negative bound", "max_height: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pixeljson.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.True(t, pixeljson.IsPixelError(err, pixeljson.ErrConfiguration))
		})
	}
}

// TestImagePath tests default output paths for decoded images.
func TestImagePath(t *testing.T) {
	assert.Equal(t, "photo.png", imagePath("photo.json", pixeljson.FormatPNG))
	assert.Equal(t, "dir/photo.jpg", imagePath("dir/photo.json.zst", pixeljson.FormatJPEG))
	assert.Equal(t, "photo.png", imagePath("photo", ""))
}
