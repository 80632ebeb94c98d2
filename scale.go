package transform

import (
	"fmt"
	"image"
	"math"
)

// DefaultDownscale halves both dimensions.
const DefaultDownscale = 0.5

// LowerResolution shrinks img by scale on both axes. scale must lie strictly
// between 0 and 1; the new dimensions are truncated.
func LowerResolution(img image.Image, scale float64, r Resample) (*image.NRGBA, error) {
	if err := validateDownscale(scale, r); err != nil {
		return nil, err
	}
	return scaleImage(img, scale, scale, r)
}

// NonUniformScale resizes img independently along each axis. Factors above 1
// stretch, factors below 1 compress; both must be positive.
func NonUniformScale(img image.Image, scaleX, scaleY float64, r Resample) (*image.NRGBA, error) {
	if err := validateScaleFactors(scaleX, scaleY, r); err != nil {
		return nil, err
	}
	return scaleImage(img, scaleX, scaleY, r)
}

func validateDownscale(scale float64, r Resample) error {
	if !(scale > 0 && scale < 1) {
		return fmt.Errorf("%w: scale %v must be between 0 and 1", ErrInvalidParameter, scale)
	}
	return validateResample(r)
}

func validateScaleFactors(scaleX, scaleY float64, r Resample) error {
	if !(scaleX > 0) || !(scaleY > 0) || math.IsInf(scaleX, 1) || math.IsInf(scaleY, 1) {
		return fmt.Errorf("%w: scale factors %vx%v must be positive", ErrInvalidParameter, scaleX, scaleY)
	}
	return validateResample(r)
}

func validateResample(r Resample) error {
	if !r.valid() {
		return fmt.Errorf("%w: unknown resample filter %v", ErrInvalidParameter, r)
	}
	return nil
}

func scaleImage(img image.Image, scaleX, scaleY float64, r Resample) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image provided", ErrInvalidParameter)
	}

	size := img.Bounds().Size()
	fw := math.Floor(float64(size.X) * scaleX)
	fh := math.Floor(float64(size.Y) * scaleY)
	if err := checkOutputSize(fw, fh); err != nil {
		return nil, err
	}

	w, h := int(fw), int(fh)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: %dx%d image scales to empty size %dx%d", ErrInvalidParameter, size.X, size.Y, w, h)
	}

	return resize(img, w, h, r), nil
}
