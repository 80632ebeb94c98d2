package transform

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gcslaoli/image-transform-go/internal/storage"
)

// Suffixes inserted before the extension when no output path is given.
const (
	SuffixBlur        = "_blur"
	SuffixLowRes      = "_lowres"
	SuffixNonUniform  = "_nonuniform"
	SuffixWatermarked = "_watermarked"
)

// Processor runs the file based variants of the operations. It holds no
// per-call state and can be shared between goroutines.
type Processor struct {
	logger *slog.Logger
	encode EncodeOptions
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for decode and write events.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithEncodeOptions sets the encoder settings used when writing outputs.
func WithEncodeOptions(o EncodeOptions) Option {
	return func(p *Processor) {
		p.encode = o
	}
}

// NewProcessor constructs a Processor. Without options it logs nothing and
// uses the default encoder settings.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultProcessor struct {
	once sync.Once
	p    *Processor
}

func getDefaultProcessor() *Processor {
	defaultProcessor.once.Do(func() {
		defaultProcessor.p = NewProcessor()
	})
	return defaultProcessor.p
}

// BlurFile blurs the image at input with the default Processor.
func BlurFile(input, output string, radius float64) (string, error) {
	return getDefaultProcessor().BlurFile(input, output, radius)
}

// LowerResolutionFile downscales the image at input with the default Processor.
func LowerResolutionFile(input, output string, scale float64, r Resample) (string, error) {
	return getDefaultProcessor().LowerResolutionFile(input, output, scale, r)
}

// NonUniformScaleFile rescales the image at input with the default Processor.
func NonUniformScaleFile(input, output string, scaleX, scaleY float64, r Resample) (string, error) {
	return getDefaultProcessor().NonUniformScaleFile(input, output, scaleX, scaleY, r)
}

// WatermarkFile watermarks the image at input with the default Processor.
func WatermarkFile(input, mark, output string, opts WatermarkOptions) (string, error) {
	return getDefaultProcessor().WatermarkFile(input, mark, output, opts)
}

// BlurFile applies GaussianBlur to the image at input and writes the result to
// output, or to input with a "_blur" suffix when output is empty. It returns
// the path written.
func (p *Processor) BlurFile(input, output string, radius float64) (string, error) {
	if err := validateBlurRadius(radius); err != nil {
		return "", err
	}
	return p.run(input, output, SuffixBlur, func(img image.Image) (image.Image, error) {
		return GaussianBlur(img, radius)
	})
}

// LowerResolutionFile applies LowerResolution to the image at input. The
// default output name carries a "_lowres" suffix.
func (p *Processor) LowerResolutionFile(input, output string, scale float64, r Resample) (string, error) {
	if err := validateDownscale(scale, r); err != nil {
		return "", err
	}
	return p.run(input, output, SuffixLowRes, func(img image.Image) (image.Image, error) {
		return LowerResolution(img, scale, r)
	})
}

// NonUniformScaleFile applies NonUniformScale to the image at input. The
// default output name carries a "_nonuniform" suffix.
func (p *Processor) NonUniformScaleFile(input, output string, scaleX, scaleY float64, r Resample) (string, error) {
	if err := validateScaleFactors(scaleX, scaleY, r); err != nil {
		return "", err
	}
	return p.run(input, output, SuffixNonUniform, func(img image.Image) (image.Image, error) {
		return NonUniformScale(img, scaleX, scaleY, r)
	})
}

// WatermarkFile blends the watermark image at mark onto the image at input.
// The default output name carries a "_watermarked" suffix.
func (p *Processor) WatermarkFile(input, mark, output string, opts WatermarkOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return p.run(input, output, SuffixWatermarked, func(img image.Image) (image.Image, error) {
		wm, err := p.Load(mark)
		if err != nil {
			return nil, err
		}

		out, rect, err := watermark(img, wm, opts)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("placed watermark",
			slog.String("position", opts.Position.String()),
			slog.String("rect", rect.String()),
			slog.Float64("opacity", opts.Opacity))
		return out, nil
	})
}

// Load decodes the image at path.
func (p *Processor) Load(path string) (image.Image, error) {
	img, format, err := Open(path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	p.logger.Debug("decoded image",
		slog.String("path", path),
		slog.String("format", format),
		slog.Int("width", b.Dx()),
		slog.Int("height", b.Dy()))
	return img, nil
}

// save encodes img as format and writes it atomically to path.
func (p *Processor) save(img image.Image, path string, format Format) error {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, p.encode); err != nil {
		return err
	}

	size := buf.Len()
	if err := storage.AtomicWrite(path, &buf); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	b := img.Bounds()
	p.logger.Info("wrote image",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("width", b.Dx()),
		slog.Int("height", b.Dy()),
		slog.Int("bytes", size))
	return nil
}

// run resolves the output path and format, then decodes input, applies op
// and writes the result. Nothing is written if any step fails.
func (p *Processor) run(input, output, suffix string, op func(image.Image) (image.Image, error)) (string, error) {
	if output == "" {
		output = DerivePath(input, suffix)
	}
	format, err := FormatFromPath(output)
	if err != nil {
		return "", err
	}

	img, err := p.Load(input)
	if err != nil {
		return "", err
	}

	result, err := op(img)
	if err != nil {
		return "", err
	}

	if err := p.save(result, output, format); err != nil {
		return "", err
	}
	return output, nil
}
