package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	transform "github.com/gcslaoli/image-transform-go"
	"github.com/gcslaoli/image-transform-go/internal/config"
	"github.com/gcslaoli/image-transform-go/internal/logging"
)

// go run . blur -in photo.png -radius 2
// go run . lowres -in photo.jpg -scale 0.25 -resample lanczos
// go run . scale -in photo.png -sx 1.5 -sy 0.75 -out stretched.png
// go run . watermark -in photo.jpg -mark logo.png -position center -opacity 0.3
// go run . watermark -in photo.jpg -mark logo.png -outbase64

const usage = `Usage: imgtransform [global flags] <command> [flags]

Commands:
  blur       Gaussian blur
  lowres     uniform downscale
  scale      non-uniform scale
  watermark  alpha-composite a watermark image

Global flags:
`

// errUsage marks command line mistakes, reported with exit code 2.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("imgtransform", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "Path to a YAML config file")
	logLevel := global.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := global.String("log-format", "", "Log format (text, json)")
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	logger, closer := logging.New(cfg.Logging)
	if closer != nil {
		defer closer.Close()
	}
	logger.Debug("logging configured", slog.String("config", cfg.Logging.String()))

	cmd := &command{
		cfg:    cfg,
		logger: logger,
		stdout: stdout,
		stderr: stderr,
		proc: transform.NewProcessor(
			transform.WithLogger(logger),
			transform.WithEncodeOptions(cfg.EncodeOptions()),
		),
	}

	name, rest := global.Arg(0), global.Args()[1:]
	switch name {
	case "blur":
		err = cmd.blur(rest)
	case "lowres":
		err = cmd.lowres(rest)
	case "scale":
		err = cmd.scale(rest)
	case "watermark":
		err = cmd.watermark(rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		global.Usage()
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		logger.Error("command failed", slog.String("command", name), slog.String("error", err.Error()))
		return 1
	}
}

type command struct {
	cfg    *config.Config
	logger *slog.Logger
	proc   *transform.Processor
	stdout io.Writer
	stderr io.Writer
}

// ioFlags are shared by every command.
type ioFlags struct {
	in        *string
	out       *string
	outBase64 *bool
}

func (c *command) newFlagSet(name string) (*flag.FlagSet, ioFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs, ioFlags{
		in:        fs.String("in", "", "Path to the input image (png/jpg/gif/webp/bmp/tiff)"),
		out:       fs.String("out", "", "Output path (defaults to the input name with a suffix)"),
		outBase64: fs.Bool("outbase64", false, "Write the result as base64 PNG to stdout instead of a file"),
	}
}

func (c *command) parse(fs *flag.FlagSet, iof ioFlags, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *iof.in == "" {
		fmt.Fprintf(c.stderr, "%s: -in is required\n", fs.Name())
		fs.Usage()
		return errUsage
	}
	return nil
}

// finish either writes the file through fileOp or, with -outbase64, runs op
// in memory and prints the PNG as base64.
func (c *command) finish(iof ioFlags, op func(image.Image) (image.Image, error), fileOp func() (string, error)) error {
	if !*iof.outBase64 {
		path, err := fileOp()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Processed %s -> %s\n", *iof.in, path)
		return nil
	}

	img, err := c.proc.Load(*iof.in)
	if err != nil {
		return err
	}
	result, err := op(img)
	if err != nil {
		return err
	}
	encoded, err := transform.EncodeBase64(result, transform.FormatPNG, c.cfg.EncodeOptions())
	if err != nil {
		return err
	}
	c.logger.Debug("encoded base64 output", slog.String("input", *iof.in), slog.Int("length", len(encoded)))
	fmt.Fprintln(c.stdout, encoded)
	return nil
}

func (c *command) blur(args []string) error {
	fs, iof := c.newFlagSet("blur")
	radius := fs.Float64("radius", c.cfg.Blur.Radius, "Blur radius (standard deviation in pixels)")
	if err := c.parse(fs, iof, args); err != nil {
		return err
	}

	return c.finish(iof,
		func(img image.Image) (image.Image, error) { return transform.GaussianBlur(img, *radius) },
		func() (string, error) { return c.proc.BlurFile(*iof.in, *iof.out, *radius) },
	)
}

func (c *command) lowres(args []string) error {
	fs, iof := c.newFlagSet("lowres")
	scale := fs.Float64("scale", c.cfg.LowRes.Scale, "Scaling factor between 0 and 1")
	resample := fs.String("resample", c.cfg.LowRes.Resample, "Resampling filter (nearest, bilinear, bicubic, lanczos)")
	if err := c.parse(fs, iof, args); err != nil {
		return err
	}
	r, err := transform.ParseResample(*resample)
	if err != nil {
		return err
	}

	return c.finish(iof,
		func(img image.Image) (image.Image, error) { return transform.LowerResolution(img, *scale, r) },
		func() (string, error) { return c.proc.LowerResolutionFile(*iof.in, *iof.out, *scale, r) },
	)
}

func (c *command) scale(args []string) error {
	fs, iof := c.newFlagSet("scale")
	sx := fs.Float64("sx", c.cfg.NonUniform.ScaleX, "Horizontal scaling factor (>1 stretches, <1 compresses)")
	sy := fs.Float64("sy", c.cfg.NonUniform.ScaleY, "Vertical scaling factor (>1 stretches, <1 compresses)")
	resample := fs.String("resample", c.cfg.NonUniform.Resample, "Resampling filter (nearest, bilinear, bicubic, lanczos)")
	if err := c.parse(fs, iof, args); err != nil {
		return err
	}
	r, err := transform.ParseResample(*resample)
	if err != nil {
		return err
	}

	return c.finish(iof,
		func(img image.Image) (image.Image, error) { return transform.NonUniformScale(img, *sx, *sy, r) },
		func() (string, error) { return c.proc.NonUniformScaleFile(*iof.in, *iof.out, *sx, *sy, r) },
	)
}

func (c *command) watermark(args []string) error {
	fs, iof := c.newFlagSet("watermark")
	mark := fs.String("mark", "", "Path to the watermark image, ideally with alpha")
	position := fs.String("position", c.cfg.Watermark.Position, "top_left, top_right, bottom_left, bottom_right or center")
	scale := fs.Float64("scale", c.cfg.Watermark.Scale, "Watermark width as a fraction of the base width")
	opacity := fs.Float64("opacity", c.cfg.Watermark.Opacity, "Watermark opacity between 0 and 1")
	margin := fs.Int("margin", c.cfg.Watermark.Margin, "Margin in pixels from the anchored edges")
	resample := fs.String("resample", c.cfg.Watermark.Resample, "Resampling filter for the watermark")
	if err := c.parse(fs, iof, args); err != nil {
		return err
	}
	if *mark == "" {
		fmt.Fprintln(c.stderr, "watermark: -mark is required")
		fs.Usage()
		return errUsage
	}

	pos, err := transform.ParseAnchor(*position)
	if err != nil {
		return err
	}
	r, err := transform.ParseResample(*resample)
	if err != nil {
		return err
	}
	opts := transform.WatermarkOptions{
		Position: pos,
		Scale:    *scale,
		Opacity:  *opacity,
		Margin:   *margin,
		Resample: r,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	return c.finish(iof,
		func(img image.Image) (image.Image, error) {
			wm, err := c.proc.Load(*mark)
			if err != nil {
				return nil, err
			}
			return transform.Watermark(img, wm, opts)
		},
		func() (string, error) { return c.proc.WatermarkFile(*iof.in, *mark, *iof.out, opts) },
	)
}
