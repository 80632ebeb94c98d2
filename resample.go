package transform

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Resample selects the interpolation filter used when an image is resized.
type Resample int

const (
	ResampleNearest Resample = iota
	ResampleBilinear
	ResampleBicubic
	ResampleLanczos
)

// DefaultResample is used by the scaling and watermark operations unless the
// caller picks another filter.
const DefaultResample = ResampleBicubic

var resampleNames = [...]string{
	ResampleNearest:  "nearest",
	ResampleBilinear: "bilinear",
	ResampleBicubic:  "bicubic",
	ResampleLanczos:  "lanczos",
}

func (r Resample) String() string {
	if r.valid() {
		return resampleNames[r]
	}
	return fmt.Sprintf("Resample(%d)", int(r))
}

func (r Resample) valid() bool {
	return r >= ResampleNearest && r <= ResampleLanczos
}

// ParseResample maps a filter name (nearest, bilinear, bicubic, lanczos) to
// its Resample value. An empty name yields DefaultResample.
func ParseResample(name string) (Resample, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultResample, nil
	}
	for i, n := range resampleNames {
		if n == name {
			return Resample(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown resample filter %q", ErrInvalidParameter, name)
}

// Output size limits, checked before a resize allocates its buffer.
const (
	MaxDimension = 16384
	MaxPixels    = 1 << 26
)

// checkOutputSize rejects target sizes beyond MaxDimension or MaxPixels. The
// sizes are taken as floats so huge scale factors cannot overflow int first.
func checkOutputSize(w, h float64) error {
	if w > MaxDimension || h > MaxDimension || w*h > MaxPixels {
		return fmt.Errorf("%w: output size %.0fx%.0f exceeds limit of %d px per side or %d px total",
			ErrInvalidParameter, w, h, MaxDimension, MaxPixels)
	}
	return nil
}

// resize scales src to exactly width x height. The result is non-premultiplied
// so the alpha channel can be edited directly afterwards.
func resize(src image.Image, width, height int, r Resample) *image.NRGBA {
	if r == ResampleLanczos {
		return imaging.Resize(src, width, height, imaging.Lanczos)
	}

	var interp draw.Interpolator
	switch r {
	case ResampleNearest:
		interp = draw.NearestNeighbor
	case ResampleBilinear:
		interp = draw.BiLinear
	default:
		interp = draw.CatmullRom
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
