// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"encoding/json"
)

// RawEncoding represents uncompressed pixel data, one entry per pixel in
// left-to-right, top-to-bottom order.
type RawEncoding struct {
	// Colors contains the pixel data.
	Colors []Pixel
}

// Compressed always returns false for raw pixel data.
func (*RawEncoding) Compressed() bool {
	return false
}

// Len returns the number of pixels.
func (e *RawEncoding) Len() int {
	return len(e.Colors)
}

// Pixels returns the pixel data.
func (e *RawEncoding) Pixels() []Pixel {
	return e.Colors
}

// MarshalJSON encodes the pixels as a JSON array of {r,g,b,a} objects.
func (e *RawEncoding) MarshalJSON() ([]byte, error) {
	if e.Colors == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Colors)
}

// UnmarshalJSON decodes a JSON array of pixels. Individual entries are
// parsed permissively; only a payload that is not an array is an error.
func (e *RawEncoding) UnmarshalJSON(data []byte) error {
	var colors []Pixel
	if err := json.Unmarshal(data, &colors); err != nil {
		return validationError("RawEncoding.UnmarshalJSON", "pixel data must be an array", err)
	}
	if colors == nil {
		colors = []Pixel{}
	}
	e.Colors = colors
	return nil
}
