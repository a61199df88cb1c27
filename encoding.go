// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

// Encoding defines the interface for pixel payload representations stored
// in the data field of a document.
type Encoding interface {
	// Compressed reports whether the payload is run-length encoded.
	Compressed() bool

	// Len returns the number of pixels the payload expands to.
	Len() int

	// Pixels expands the payload into a row-major pixel sequence.
	Pixels() []Pixel
}

// NewEncoding returns an RLEEncoding of pixels when compress is set,
// otherwise a RawEncoding.
func NewEncoding(pixels []Pixel, compress bool) Encoding {
	if compress {
		return &RLEEncoding{Runs: Compress(pixels)}
	}
	return &RawEncoding{Colors: pixels}
}
