package transform

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultBlurRadius is a moderate blur. As a rough guide 0.5-1.0 is light,
// 1.5-3.0 moderate and 4.0 or more heavy.
const DefaultBlurRadius = 1.5

// MaxBlurRadius bounds the kernel size; the kernel spans about six radii.
const MaxBlurRadius = 500

// GaussianBlur blurs img with a Gaussian kernel whose standard deviation is
// radius pixels. A zero radius returns an unmodified copy.
func GaussianBlur(img image.Image, radius float64) (*image.NRGBA, error) {
	if err := validateBlurRadius(radius); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image provided", ErrInvalidParameter)
	}
	return imaging.Blur(img, radius), nil
}

func validateBlurRadius(radius float64) error {
	if math.IsNaN(radius) || radius < 0 {
		return fmt.Errorf("%w: blur radius %v must be non-negative", ErrInvalidParameter, radius)
	}
	if radius > MaxBlurRadius {
		return fmt.Errorf("%w: blur radius %v exceeds %d", ErrInvalidParameter, radius, MaxBlurRadius)
	}
	return nil
}
