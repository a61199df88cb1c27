// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

// Command pixeljson converts images to JSON pixel documents and back.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	pixeljson "github.com/tenthirtyam/go-pixeljson"
	"github.com/tenthirtyam/go-pixeljson/textconv"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	configPath string
	verbose    bool

	cfg    *Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pixeljson",
		Short: "Convert images to JSON pixel documents and back",
		Long: `pixeljson converts raster images (PNG, JPEG, GIF, WebP, BMP, TIFF)
into JSON documents of RGBA pixels, optionally run-length encoded, and
reconstructs PNG or JPEG images from such documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.newEncodeCmd(), a.newDecodeCmd(), a.newTextCmd())
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	a.logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func (a *app) converter() *pixeljson.Converter {
	return pixeljson.NewConverterWithOptions(
		pixeljson.WithCodec(a.cfg.Codec()),
		pixeljson.WithLogger(pixeljson.NewZapLogger(a.logger)),
		pixeljson.WithMaxPixels(a.cfg.MaxPixels),
	)
}

func (a *app) newEncodeCmd() *cobra.Command {
	var (
		output    string
		opts      pixeljson.Options
		compact   bool
		maxWidth  int
		maxHeight int
	)

	cmd := &cobra.Command{
		Use:   "encode <image>",
		Short: "Convert an image to a JSON pixel document",
		Long: `Decodes an image and writes a JSON document with its metadata, the
original file as base64 and its pixels. Output ending in .zst is
zstd-compressed. Without -o the document is written to stdout.

Example:
  pixeljson encode photo.png -o photo.json --compress`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			overrideBool(flags.Changed("base64"), &a.cfg.IncludeBase64, opts.IncludeBase64)
			overrideBool(flags.Changed("pixels"), &a.cfg.IncludePixels, opts.IncludePixels)
			overrideBool(flags.Changed("metadata"), &a.cfg.IncludeMetadata, opts.IncludeMetadata)
			overrideBool(flags.Changed("compress"), &a.cfg.Compress, opts.Compress)
			overrideBool(flags.Changed("compact"), &a.cfg.Compact, compact)
			overrideInt(flags.Changed("max-width"), &a.cfg.MaxWidth, maxWidth)
			overrideInt(flags.Changed("max-height"), &a.cfg.MaxHeight, maxHeight)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runEncode(cmd, args[0], output)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output document path (.json or .json.zst)")
	f.BoolVar(&opts.IncludeBase64, "base64", true, "include the original image as base64")
	f.BoolVar(&opts.IncludePixels, "pixels", true, "include pixel data")
	f.BoolVar(&opts.IncludeMetadata, "metadata", true, "include file metadata")
	f.BoolVar(&opts.Compress, "compress", false, "run-length encode pixels")
	f.BoolVar(&compact, "compact", false, "write the document without indentation")
	f.IntVar(&maxWidth, "max-width", 0, "downscale images wider than this")
	f.IntVar(&maxHeight, "max-height", 0, "downscale images taller than this")
	return cmd
}

func (a *app) runEncode(cmd *cobra.Command, path, output string) error {
	in, err := pixeljson.InputFromFile(path)
	if err != nil {
		return err
	}

	doc, err := a.converter().ImageToDocument(cmd.Context(), in, a.cfg.Options)
	if err != nil {
		return err
	}

	if output == "" || output == "-" {
		return pixeljson.WriteDocument(cmd.OutOrStdout(), doc, !a.cfg.Compact, false)
	}
	if err := pixeljson.WriteDocumentFile(output, doc, !a.cfg.Compact); err != nil {
		return err
	}
	return reportWrite(cmd.ErrOrStderr(), output, int64(len(in.Data)))
}

func (a *app) newDecodeCmd() *cobra.Command {
	var (
		output  string
		width   int
		height  int
		format  string
		quality int
	)

	cmd := &cobra.Command{
		Use:   "decode <document|->",
		Short: "Reconstruct an image from a JSON pixel document",
		Long: `Reads a JSON document (plain or .zst compressed, "-" for stdin) and
writes the reconstructed image. Width and height override the dimensions
stored in the document. Without -o the image is written next to the
document, or to stdout when reading stdin.

Example:
  pixeljson decode photo.json -o photo.png --width 64 --height 64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			overrideString(flags.Changed("format"), &a.cfg.OutputFormat, format)
			overrideInt(flags.Changed("quality"), &a.cfg.JPEGQuality, quality)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runDecode(cmd, args[0], output, width, height)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output image path")
	f.IntVar(&width, "width", 0, "canvas width")
	f.IntVar(&height, "height", 0, "canvas height")
	f.StringVar(&format, "format", string(pixeljson.FormatPNG), "output format: png or jpeg")
	f.IntVar(&quality, "quality", pixeljson.DefaultJPEGQuality, "JPEG quality (1-100)")
	return cmd
}

func (a *app) runDecode(cmd *cobra.Command, path, output string, width, height int) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = pixeljson.ReadDocument(cmd.InOrStdin())
	} else {
		data, err = pixeljson.ReadDocumentFile(path)
	}
	if err != nil {
		return err
	}

	res, err := a.converter().DocumentToImage(cmd.Context(), data, width, height)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), res.Summary())

	if output == "" && path != "-" {
		output = imagePath(path, pixeljson.OutputFormat(a.cfg.OutputFormat))
	}
	if output == "" || output == "-" {
		_, err := cmd.OutOrStdout().Write(res.Image)
		return err
	}

	if err := os.WriteFile(output, res.Image, 0o644); err != nil { // #nosec G306 - output images are not secret
		return pixeljson.WrapError("decode", pixeljson.ErrIO, "failed to write image", err)
	}
	return reportWrite(cmd.ErrOrStderr(), output, int64(len(data)))
}

// imagePath derives an image file name from a document path, e.g.
// "photo.json.zst" becomes "photo.png".
func imagePath(doc string, format pixeljson.OutputFormat) string {
	base := strings.TrimSuffix(doc, pixeljson.CompressedExtension)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + format.Extension()
}

// textConverters maps text subcommand modes to converters.
var textConverters = map[string]func(string) (string, error){
	"base64":   func(s string) (string, error) { return textconv.EncodeBase64(s), nil },
	"unbase64": textconv.DecodeBase64,
	"hex":      func(s string) (string, error) { return textconv.EncodeHex(s), nil },
	"unhex":    textconv.DecodeHex,
	"format":   textconv.FormatJSON,
	"minify":   textconv.MinifyJSON,
	"csv2json": textconv.CSVToJSON,
}

func textModes() []string {
	modes := make([]string, 0, len(textConverters))
	for m := range textConverters {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

func (a *app) newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <mode> [input|-]",
		Short: "Run a text converter",
		Long: fmt.Sprintf(`Converts text with one of the modes: %s.
The input is the second argument, or stdin when it is "-" or omitted.

Example:
  pixeljson text hex "Hello"
  cat data.csv | pixeljson text csv2json`, strings.Join(textModes(), ", ")),
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: textModes(),
		RunE: func(cmd *cobra.Command, args []string) error {
			convert, ok := textConverters[args[0]]
			if !ok {
				return pixeljson.NewPixelError("text", pixeljson.ErrUnsupported,
					fmt.Sprintf("unknown mode %q (want one of %s)", args[0], strings.Join(textModes(), ", ")), nil)
			}

			input, err := textInput(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}

			out, err := convert(input)
			if err != nil {
				return err
			}
			a.logger.Debug("text converted", zap.String("mode", args[0]), zap.Int("bytes", len(out)))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func textInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", pixeljson.WrapError("text", pixeljson.ErrIO, "failed to read stdin", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func reportWrite(w io.Writer, path string, source int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return pixeljson.WrapError("report", pixeljson.ErrIO, "failed to stat output", err)
	}
	fmt.Fprintf(w, "Wrote %s (%s, from %s input)\n", path,
		humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(source))) // #nosec G115 - sizes are non-negative
	return nil
}

func overrideBool(changed bool, dst *bool, v bool) {
	if changed {
		*dst = v
	}
}

func overrideInt(changed bool, dst *int, v int) {
	if changed {
		*dst = v
	}
}

func overrideString(changed bool, dst *string, v string) {
	if changed {
		*dst = v
	}
}
