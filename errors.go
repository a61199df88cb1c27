// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error categories for pixel codec operations.
type ErrorCode int

const (
	// ErrDecode indicates source bytes could not be decoded as a supported raster image.
	ErrDecode ErrorCode = iota
	// ErrNoPixelData indicates a document carries none of the recognized pixel locations.
	ErrNoPixelData
	// ErrEncoding indicates a raster image or document could not be encoded.
	ErrEncoding
	// ErrValidation indicates input validation failure.
	ErrValidation
	// ErrConfiguration indicates a configuration error.
	ErrConfiguration
	// ErrUnsupported indicates an unsupported feature or format.
	ErrUnsupported
	// ErrIO indicates a file or stream could not be read or written.
	ErrIO
	// ErrCanceled indicates the caller's context ended before the operation ran.
	ErrCanceled
)

// String returns the string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrDecode:
		return "decode"
	case ErrNoPixelData:
		return "no pixel data"
	case ErrEncoding:
		return "encoding"
	case ErrValidation:
		return "validation"
	case ErrConfiguration:
		return "configuration"
	case ErrUnsupported:
		return "unsupported"
	case ErrIO:
		return "io"
	case ErrCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// PixelError provides structured error information with operation context,
// error codes, and message wrapping.
type PixelError struct {
	Op      string
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *PixelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pixeljson %s: %s: %s: %v", e.Code.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("pixeljson %s: %s: %s", e.Code.String(), e.Op, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping.
func (e *PixelError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error.
func (e *PixelError) Is(target error) bool {
	var pixErr *PixelError
	if errors.As(target, &pixErr) {
		return e.Code == pixErr.Code && e.Op == pixErr.Op
	}
	return false
}

// NewPixelError creates a new PixelError with the specified parameters.
func NewPixelError(op string, code ErrorCode, message string, err error) *PixelError {
	return &PixelError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WrapError wraps an existing error with codec-specific context.
// Returns nil if the input error is nil.
func WrapError(op string, code ErrorCode, message string, err error) error {
	if err == nil {
		return nil
	}
	return &PixelError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsPixelError checks if an error is a PixelError and optionally matches specific error codes.
// If no codes are provided, returns true for any PixelError.
func IsPixelError(err error, code ...ErrorCode) bool {
	var pixErr *PixelError
	if !errors.As(err, &pixErr) {
		return false
	}

	if len(code) == 0 {
		return true
	}

	for _, c := range code {
		if pixErr.Code == c {
			return true
		}
	}
	return false
}

// GetErrorCode extracts the error code from a PixelError.
// Returns -1 if the error is not a PixelError.
func GetErrorCode(err error) ErrorCode {
	var pixErr *PixelError
	if errors.As(err, &pixErr) {
		return pixErr.Code
	}
	return ErrorCode(-1)
}

func decodeError(op, message string, err error) error {
	return NewPixelError(op, ErrDecode, message, err)
}

func noPixelDataError(op string) error {
	return NewPixelError(op, ErrNoPixelData, "No pixel data found", nil)
}

func encodingError(op, message string, err error) error {
	return NewPixelError(op, ErrEncoding, message, err)
}

func validationError(op, message string, err error) error {
	return NewPixelError(op, ErrValidation, message, err)
}

func configurationError(op, message string, err error) error {
	return NewPixelError(op, ErrConfiguration, message, err)
}

func unsupportedError(op, message string, err error) error {
	return NewPixelError(op, ErrUnsupported, message, err)
}

func ioError(op, message string, err error) error {
	return NewPixelError(op, ErrIO, message, err)
}

func canceledError(op string, err error) error {
	return NewPixelError(op, ErrCanceled, "context done", err)
}
