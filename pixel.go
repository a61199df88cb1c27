// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"encoding/json"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Pixel represents one non-premultiplied RGBA sample.
//
// Decoding a Pixel from JSON never fails. Channel values are rounded and
// clamped into [0,255], numeric strings are accepted, missing or null
// r/g/b channels become 0 and a missing or null alpha becomes 255. Any
// other value (text, arrays, objects) maps to 0. An entry that is not an
// object at all decodes to opaque black.
type Pixel struct {
	// R is the red channel (0-255).
	R uint8 `json:"r"`

	// G is the green channel (0-255).
	G uint8 `json:"g"`

	// B is the blue channel (0-255).
	B uint8 `json:"b"`

	// A is the alpha channel (0-255, 255 is opaque).
	A uint8 `json:"a"`
}

// Common pixel constants.
var (
	// White is opaque white, used to pad short pixel sequences.
	White = Pixel{R: 255, G: 255, B: 255, A: 255}

	// Black is opaque black.
	Black = Pixel{A: 255}

	// Transparent is fully transparent black.
	Transparent = Pixel{}
)

// RGBA implements color.Color.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}.RGBA()
}

// PixelFromColor converts any color.Color to a Pixel.
func PixelFromColor(c color.Color) Pixel {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pixel{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Clamp rounds v to the nearest integer and clamps it into [0,255].
// NaN maps to 0.
func Clamp(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// UnmarshalJSON decodes a pixel permissively. It never returns an error.
func (p *Pixel) UnmarshalJSON(data []byte) error {
	*p = parsePixel(data)
	return nil
}

// strictPixel is the fast path for well-formed numeric entries.
type strictPixel struct {
	R *float64 `json:"r"`
	G *float64 `json:"g"`
	B *float64 `json:"b"`
	A *float64 `json:"a"`
}

func parsePixel(data []byte) Pixel {
	var sp strictPixel
	if err := json.Unmarshal(data, &sp); err == nil {
		if isJSONObject(data) {
			return Pixel{
				R: floatChannel(sp.R, 0),
				G: floatChannel(sp.G, 0),
				B: floatChannel(sp.B, 0),
				A: floatChannel(sp.A, 255),
			}
		}
		return Black
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Black
	}
	return Pixel{
		R: rawChannel(fields["r"], 0),
		G: rawChannel(fields["g"], 0),
		B: rawChannel(fields["b"], 0),
		A: rawChannel(fields["a"], 255),
	}
}

func isJSONObject(data []byte) bool {
	s := strings.TrimSpace(string(data))
	return strings.HasPrefix(s, "{")
}

func floatChannel(v *float64, def uint8) uint8 {
	if v == nil {
		return def
	}
	return Clamp(*v)
}

// rawChannel decodes a single channel that failed the numeric fast path.
func rawChannel(raw json.RawMessage, def uint8) uint8 {
	if len(raw) == 0 {
		return def
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch t := v.(type) {
	case nil:
		return def
	case float64:
		return Clamp(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return Clamp(f)
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}
