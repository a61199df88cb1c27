// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"fmt"
)

// MaxDimension is the largest width or height accepted for a canvas.
const MaxDimension = 32768

// InputValidator validates dimensions and settings before buffers are allocated.
type InputValidator struct{}

func newInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateDimensions validates canvas dimensions. A maxPixels of zero or
// less disables the area check.
func (iv *InputValidator) ValidateDimensions(width, height, maxPixels int) error {
	if width <= 0 || height <= 0 {
		return validationError("InputValidator.ValidateDimensions",
			fmt.Sprintf("dimensions must be positive, got %dx%d", width, height), nil)
	}

	if width > MaxDimension || height > MaxDimension {
		return validationError("InputValidator.ValidateDimensions",
			fmt.Sprintf("dimensions too large: %dx%d (max %d)", width, height, MaxDimension), nil)
	}

	area := int64(width) * int64(height)
	if maxPixels > 0 && area > int64(maxPixels) {
		return validationError("InputValidator.ValidateDimensions",
			fmt.Sprintf("canvas area too large: %d pixels (max %d)", area, maxPixels), nil)
	}

	return nil
}

// ValidateHints validates caller-supplied width and height hints. Zero
// means "unknown"; negative values are rejected.
func (iv *InputValidator) ValidateHints(width, height int) error {
	if width < 0 || height < 0 {
		return validationError("InputValidator.ValidateHints",
			fmt.Sprintf("dimension hints cannot be negative, got %dx%d", width, height), nil)
	}
	if width > MaxDimension || height > MaxDimension {
		return validationError("InputValidator.ValidateHints",
			fmt.Sprintf("dimension hints too large: %dx%d (max %d)", width, height, MaxDimension), nil)
	}
	return nil
}

// ValidatePixelCount validates a pixel count against a limit.
func (iv *InputValidator) ValidatePixelCount(count, maxPixels int) error {
	if count < 0 {
		return validationError("InputValidator.ValidatePixelCount",
			fmt.Sprintf("pixel count cannot be negative: %d", count), nil)
	}
	if maxPixels > 0 && count > maxPixels {
		return validationError("InputValidator.ValidatePixelCount",
			fmt.Sprintf("pixel count %d exceeds maximum %d", count, maxPixels), nil)
	}
	return nil
}

// ValidateOutputFormat validates an output format name.
func (iv *InputValidator) ValidateOutputFormat(format OutputFormat) error {
	switch format {
	case "", FormatPNG, FormatJPEG:
		return nil
	default:
		return unsupportedError("InputValidator.ValidateOutputFormat",
			fmt.Sprintf("output format %q (must be png or jpeg)", format), nil)
	}
}

// ValidateJPEGQuality validates a JPEG quality. Zero selects the default.
func (iv *InputValidator) ValidateJPEGQuality(quality int) error {
	if quality < 0 || quality > 100 {
		return validationError("InputValidator.ValidateJPEGQuality",
			fmt.Sprintf("invalid JPEG quality: %d (must be 1-100)", quality), nil)
	}
	return nil
}

// ValidateCodec validates a StandardCodec configuration.
func (iv *InputValidator) ValidateCodec(c *StandardCodec) error {
	if c == nil {
		return configurationError("InputValidator.ValidateCodec", "codec cannot be nil", nil)
	}
	if err := iv.ValidateOutputFormat(c.Format); err != nil {
		return configurationError("InputValidator.ValidateCodec", "invalid output format", err)
	}
	if err := iv.ValidateJPEGQuality(c.JPEGQuality); err != nil {
		return configurationError("InputValidator.ValidateCodec", "invalid JPEG quality", err)
	}
	if c.MaxWidth < 0 || c.MaxHeight < 0 {
		return configurationError("InputValidator.ValidateCodec",
			fmt.Sprintf("size bounds cannot be negative, got %dx%d", c.MaxWidth, c.MaxHeight), nil)
	}
	return nil
}

// ValidateCodec validates a StandardCodec configuration.
func ValidateCodec(c *StandardCodec) error {
	return newInputValidator().ValidateCodec(c)
}
