// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

// Package textconv provides small text converters: Base64, hexadecimal,
// JSON formatting and CSV to JSON.
//
// All converters are stateless and operate on UTF-8 text.
package textconv

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrInvalidBase64 is returned when input is not valid Base64.
	ErrInvalidBase64 = errors.New("textconv: invalid base64")

	// ErrInvalidHex is returned when input contains a non-hexadecimal digit.
	ErrInvalidHex = errors.New("textconv: invalid hex")

	// ErrInvalidJSON is returned when input is not valid JSON.
	ErrInvalidJSON = errors.New("textconv: invalid json")
)

// EncodeBase64 returns the standard padded Base64 encoding of s.
func EncodeBase64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeBase64 decodes standard Base64, padded or not. Whitespace is ignored.
func DecodeBase64(s string) (string, error) {
	s = stripSpace(s)
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		out, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return string(out), nil
}

// EncodeHex returns two lowercase hex digits per byte of s.
func EncodeHex(s string) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		out = append(out, digits[s[i]>>4], digits[s[i]&0x0f])
	}
	return string(out)
}

// DecodeHex decodes pairs of hex digits. A trailing single digit decodes
// to the byte with that value.
func DecodeHex(s string) (string, error) {
	out := make([]byte, 0, (len(s)+1)/2)
	for i := 0; i < len(s); i += 2 {
		var b byte
		for j := i; j < i+2 && j < len(s); j++ {
			v, ok := fromHexDigit(s[j])
			if !ok {
				return "", fmt.Errorf("%w: %q at offset %d", ErrInvalidHex, s[j], j)
			}
			b = b<<4 | v
		}
		out = append(out, b)
	}
	return string(out), nil
}

func fromHexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// FormatJSON re-indents JSON by two spaces. Key order and number
// formatting are preserved.
func FormatJSON(s string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(s)), "", "  "); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return buf.String(), nil
}

// MinifyJSON removes insignificant whitespace from JSON.
func MinifyJSON(s string) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(strings.TrimSpace(s))); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return buf.String(), nil
}

// CSVToJSON converts comma separated lines to a two-space indented JSON
// array of objects keyed by the trimmed header line. Values are trimmed
// strings. Keys missing from a short row are omitted and extra values are
// ignored. Quoting is not interpreted. Input without data lines, including
// empty input, yields "[]".
func CSVToJSON(s string) (string, error) {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	headers := splitTrim(lines[0])

	rows := make([]row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitTrim(line)
		r := row{}
		for i, h := range headers {
			if i >= len(values) {
				break
			}
			r.set(h, values[i])
		}
		rows = append(rows, r)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func splitTrim(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// row is a JSON object that keeps keys in insertion order. Setting an
// existing key replaces its value in place.
type row struct {
	keys   []string
	values map[string]string
}

func (r *row) set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeString(&buf, r.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
