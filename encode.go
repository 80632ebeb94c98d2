package transform

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format identifies an output encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
	FormatWebP Format = "webp"
)

var formatExts = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".webp": FormatWebP,
}

var imagingFormats = map[Format]imaging.Format{
	FormatJPEG: imaging.JPEG,
	FormatPNG:  imaging.PNG,
	FormatGIF:  imaging.GIF,
	FormatTIFF: imaging.TIFF,
	FormatBMP:  imaging.BMP,
}

// FormatFromPath picks the output format from the file extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formatExts[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %w: extension %q", ErrEncode, ErrUnsupportedFormat, ext)
}

// Encoder defaults.
const (
	DefaultJPEGQuality = 75
	DefaultWebPQuality = 80
)

// EncodeOptions tunes the lossy encoders. Zero values select the defaults.
type EncodeOptions struct {
	JPEGQuality  int
	WebPQuality  int
	WebPLossless bool
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format, opts EncodeOptions) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrEncode)
	}

	var err error
	if format == FormatWebP {
		err = webp.Encode(w, img, &webp.Options{
			Lossless: opts.WebPLossless,
			Quality:  float32(clampQuality(opts.WebPQuality, DefaultWebPQuality)),
		})
	} else if f, ok := imagingFormats[format]; ok {
		err = imaging.Encode(w, img, f, imaging.JPEGQuality(clampQuality(opts.JPEGQuality, DefaultJPEGQuality)))
	} else {
		return fmt.Errorf("%w: %w: %q", ErrEncode, ErrUnsupportedFormat, format)
	}

	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, format, err)
	}
	return nil
}

func clampQuality(q, def int) int {
	if q <= 0 {
		return def
	}
	if q > 100 {
		return 100
	}
	return q
}

// DerivePath inserts suffix between the base name and the extension of path,
// e.g. photo.png -> photo_blur.png.
func DerivePath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
