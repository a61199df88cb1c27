// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package main

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	pixeljson "github.com/tenthirtyam/go-pixeljson"
)

// Config holds CLI settings loaded from a YAML file. Command-line flags
// override file values.
type Config struct {
	pixeljson.Options `yaml:",inline"`

	// Compact writes documents without indentation.
	Compact bool `yaml:"compact"`

	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`

	// MaxPixels bounds canvas area. Zero uses the library default and a
	// negative value disables the bound.
	MaxPixels int `yaml:"max_pixels"`

	OutputFormat string `yaml:"output_format"`
	JPEGQuality  int    `yaml:"jpeg_quality"`

	// LogLevel is a zap level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Options:      pixeljson.DefaultOptions(),
		OutputFormat: string(pixeljson.FormatPNG),
		JPEGQuality:  pixeljson.DefaultJPEGQuality,
		LogLevel:     "warn",
	}
}

// LoadConfig loads configuration from a YAML file. An empty path or a
// missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, pixeljson.WrapError("LoadConfig", pixeljson.ErrConfiguration, "failed to read config", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, pixeljson.WrapError("LoadConfig", pixeljson.ErrConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Codec returns the image codec described by the configuration.
func (c *Config) Codec() *pixeljson.StandardCodec {
	return &pixeljson.StandardCodec{
		Format:      pixeljson.OutputFormat(c.OutputFormat),
		JPEGQuality: c.JPEGQuality,
		MaxWidth:    c.MaxWidth,
		MaxHeight:   c.MaxHeight,
	}
}

// Level returns the configured log level.
func (c *Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.WarnLevel, nil
	}
	return zapcore.ParseLevel(c.LogLevel)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := pixeljson.ValidateCodec(c.Codec()); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return pixeljson.NewPixelError("Config.Validate", pixeljson.ErrConfiguration,
			fmt.Sprintf("invalid log level %q", c.LogLevel), err)
	}
	return nil
}
