// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxRunLength is the largest count a single run may carry. Longer
// stretches of identical pixels are split into several runs.
const MaxRunLength = 255

// Run represents Count consecutive pixels of the same Color.
type Run struct {
	// Color is the pixel value repeated by this run.
	Color Pixel `json:"color"`

	// Count is the number of repetitions, 1 to MaxRunLength for runs
	// produced by Compress.
	Count int `json:"count"`
}

// UnmarshalJSON decodes a run permissively using ParseRun. It never returns an error.
func (r *Run) UnmarshalJSON(data []byte) error {
	*r = ParseRun(data)
	return nil
}

// RLEEncoding represents run-length encoded pixel data.
type RLEEncoding struct {
	Runs []Run
}

// Compressed always returns true for run-length encoded data.
func (*RLEEncoding) Compressed() bool {
	return true
}

// Len returns the number of pixels the runs expand to.
func (e *RLEEncoding) Len() int {
	n := 0
	for _, r := range e.Runs {
		n += runCount(r.Count)
	}
	return n
}

// Pixels expands the runs.
func (e *RLEEncoding) Pixels() []Pixel {
	return Decompress(e.Runs)
}

// MarshalJSON encodes the runs as a JSON array of {color,count} objects.
func (e *RLEEncoding) MarshalJSON() ([]byte, error) {
	if e.Runs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Runs)
}

// UnmarshalJSON decodes a JSON array of runs. Individual runs are parsed
// permissively; only a payload that is not an array is an error.
func (e *RLEEncoding) UnmarshalJSON(data []byte) error {
	var runs []Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return validationError("RLEEncoding.UnmarshalJSON", "run data must be an array", err)
	}
	if runs == nil {
		runs = []Run{}
	}
	e.Runs = runs
	return nil
}

// Compress run-length encodes pixels. A run is extended while the next
// pixel matches the run color on all four channels and the run holds fewer
// than MaxRunLength pixels. The result is canonical: see IsCanonical.
//
// Example:
//
//	runs := Compress(buf.Pixels)
//	// 300 identical pixels -> [{c 255} {c 45}]
func Compress(pixels []Pixel) []Run {
	runs := make([]Run, 0)
	if len(pixels) == 0 {
		return runs
	}

	current := pixels[0]
	count := 1
	for _, p := range pixels[1:] {
		if p == current && count < MaxRunLength {
			count++
			continue
		}
		runs = append(runs, Run{Color: current, Count: count})
		current = p
		count = 1
	}
	return append(runs, Run{Color: current, Count: count})
}

// Decompress expands runs in order. A non-positive count is treated as 1.
func Decompress(runs []Run) []Pixel {
	total := 0
	for _, r := range runs {
		total += runCount(r.Count)
	}

	pixels := make([]Pixel, 0, total)
	for _, r := range runs {
		for i := runCount(r.Count); i > 0; i-- {
			pixels = append(pixels, r.Color)
		}
	}
	return pixels
}

// DecompressLimit behaves like Decompress but refuses to expand runs to
// more than maxPixels pixels. A maxPixels of zero or less disables the limit.
func DecompressLimit(runs []Run, maxPixels int) ([]Pixel, error) {
	if maxPixels > 0 {
		validator := newInputValidator()
		total := 0
		for i, r := range runs {
			total += runCount(r.Count)
			if err := validator.ValidatePixelCount(total, maxPixels); err != nil {
				return nil, validationError("DecompressLimit",
					fmt.Sprintf("runs expand past %d pixels at run %d", maxPixels, i), err)
			}
		}
	}
	return Decompress(runs), nil
}

// IsCanonical reports whether runs could have been produced by Compress:
// every count is within [1, MaxRunLength] and a run repeats the color of
// its predecessor only when the predecessor is full.
func IsCanonical(runs []Run) bool {
	for i, r := range runs {
		if r.Count < 1 || r.Count > MaxRunLength {
			return false
		}
		if i > 0 && runs[i-1].Color == r.Color && runs[i-1].Count != MaxRunLength {
			return false
		}
	}
	return true
}

// ParseRun decodes a single run entry with the following defaults:
//   - a missing, zero, non-numeric or negative count becomes 1;
//     fractional counts round up;
//   - a missing or empty color means the entry itself is read as the
//     pixel, so bare {r,g,b,a} objects are accepted as runs of one;
//   - channels follow the Pixel decoding rules.
//
// ParseRun never fails.
func ParseRun(raw json.RawMessage) Run {
	run := Run{Color: Black, Count: 1}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return run
	}

	if c, ok := fields["color"]; ok && truthy(c) {
		run.Color = parsePixel(c)
	} else {
		run.Color = parsePixel(raw)
	}
	run.Count = parseCount(fields["count"])
	return run
}

func runCount(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func parseCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 1
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 1
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}

	if math.IsNaN(f) || f <= 0 {
		return 1
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(f))
}

// truthy reports whether a raw JSON value is neither null, false, a zero
// number nor the empty string. Any spelling of zero (0.0, -0, 0e0) is false.
func truthy(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}
