package transform

import (
	"fmt"
	"image"
	"image/draw"
	"math"
)

// WatermarkOptions controls where and how strongly a watermark is blended.
type WatermarkOptions struct {
	// Position is the canvas point the watermark is anchored to.
	Position Anchor
	// Scale is the watermark width as a fraction of the base width. Values
	// of 1 or more are allowed and give a watermark wider than the base.
	Scale float64
	// Opacity multiplies the watermark alpha channel. Must be in [0, 1].
	Opacity float64
	// Margin is the distance in pixels kept from the anchored edges.
	Margin int
	// Resample is the filter used to resize the watermark.
	Resample Resample
}

// DefaultWatermarkOptions returns a bottom-right watermark at 20% of the base
// width, half opacity and a 10px margin.
func DefaultWatermarkOptions() WatermarkOptions {
	return WatermarkOptions{
		Position: BottomRight,
		Scale:    0.2,
		Opacity:  0.5,
		Margin:   10,
		Resample: DefaultResample,
	}
}

// Validate reports the first out-of-range option as an ErrInvalidParameter.
func (o WatermarkOptions) Validate() error {
	if math.IsNaN(o.Opacity) || o.Opacity < 0 || o.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v must be between 0 and 1", ErrInvalidParameter, o.Opacity)
	}
	if !(o.Scale > 0) || math.IsInf(o.Scale, 1) {
		return fmt.Errorf("%w: scale %v must be positive", ErrInvalidParameter, o.Scale)
	}
	if o.Margin < 0 {
		return fmt.Errorf("%w: margin %d must not be negative", ErrInvalidParameter, o.Margin)
	}
	if !o.Position.valid() {
		return fmt.Errorf("%w: unknown position %v", ErrInvalidParameter, o.Position)
	}
	if !o.Resample.valid() {
		return fmt.Errorf("%w: unknown resample filter %v", ErrInvalidParameter, o.Resample)
	}
	return nil
}

// Placement returns the rectangle a watermark of size mark covers on a base
// of size base. The rectangle is not clipped to the base.
func Placement(base, mark image.Point, opts WatermarkOptions) (image.Rectangle, error) {
	if err := opts.Validate(); err != nil {
		return image.Rectangle{}, err
	}
	if base.X <= 0 || base.Y <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: invalid base dimensions %dx%d", ErrInvalidParameter, base.X, base.Y)
	}
	if mark.X <= 0 || mark.Y <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: invalid watermark dimensions %dx%d", ErrInvalidParameter, mark.X, mark.Y)
	}

	size, err := watermarkSize(base.X, mark, opts.Scale)
	if err != nil {
		return image.Rectangle{}, err
	}

	at, err := opts.Position.Offset(base, size, opts.Margin)
	if err != nil {
		return image.Rectangle{}, err
	}
	return image.Rectangle{Min: at, Max: at.Add(size)}, nil
}

// Watermark blends mark onto base and returns the result as a new opaque
// RGBA image with the dimensions of base. base is not modified.
//
// The watermark is resized to opts.Scale of the base width keeping its aspect
// ratio, its alpha is multiplied by opts.Opacity and it is alpha blended at the
// anchored position. Parts falling outside the base are clipped.
func Watermark(base, mark image.Image, opts WatermarkOptions) (*image.RGBA, error) {
	dst, _, err := watermark(base, mark, opts)
	return dst, err
}

// watermark is Watermark that also reports the unclipped watermark rectangle.
func watermark(base, mark image.Image, opts WatermarkOptions) (*image.RGBA, image.Rectangle, error) {
	if base == nil || mark == nil {
		return nil, image.Rectangle{}, fmt.Errorf("%w: nil image provided", ErrInvalidParameter)
	}

	rect, err := Placement(base.Bounds().Size(), mark.Bounds().Size(), opts)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	overlay := resize(mark, rect.Dx(), rect.Dy(), opts.Resample)
	applyOpacity(overlay, opts.Opacity)

	dst := flattenToRGBA(base)
	blendOver(dst, overlay, rect.Min)

	return dst, rect, nil
}

// watermarkSize derives the watermark size from the base width. The height is
// truncated so the original aspect ratio is never exceeded.
func watermarkSize(baseWidth int, mark image.Point, scale float64) (image.Point, error) {
	fw := math.Round(float64(baseWidth) * scale)
	if err := checkOutputSize(fw, fw*float64(mark.Y)/float64(mark.X)); err != nil {
		return image.Point{}, err
	}

	w := int(fw)
	h := int(int64(w) * int64(mark.Y) / int64(mark.X))
	if w < 1 || h < 1 {
		return image.Point{}, fmt.Errorf("%w: watermark scales to empty size %dx%d", ErrInvalidParameter, w, h)
	}
	return image.Pt(w, h), nil
}

// applyOpacity scales the alpha channel in place, truncating toward zero.
// Opacity 1 leaves the alpha untouched.
func applyOpacity(img *image.NRGBA, opacity float64) {
	if opacity >= 1 {
		return
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		offset := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			i := offset + x*4 + 3
			img.Pix[i] = uint8(float64(img.Pix[i]) * opacity)
		}
	}
}

// flattenToRGBA copies src into an opaque RGBA buffer anchored at the origin.
// Colors are taken unpremultiplied and the source alpha is dropped.
func flattenToRGBA(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	rect := image.Rect(0, 0, bounds.Dx(), bounds.Dy())

	// Going through draw would premultiply and lose the color of fully
	// transparent NRGBA pixels.
	straight, ok := src.(*image.NRGBA)
	if !ok || bounds.Min != (image.Point{}) || straight.Stride != 4*bounds.Dx() {
		straight = image.NewNRGBA(rect)
		draw.Draw(straight, rect, src, bounds.Min, draw.Src)
	}

	dst := image.NewRGBA(rect)
	for i := 0; i < len(dst.Pix); i += 4 {
		copy(dst.Pix[i:i+3], straight.Pix[i:i+3])
		dst.Pix[i+3] = 0xff
	}
	return dst
}

// blendOver alpha blends src onto dst with its top-left corner at at. Pixels
// outside dst are skipped.
func blendOver(dst *image.RGBA, src *image.NRGBA, at image.Point) {
	sb := src.Bounds()
	area := sb.Add(at.Sub(sb.Min)).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			s := src.PixOffset(x-at.X+sb.Min.X, y-at.Y+sb.Min.Y)
			a := uint32(src.Pix[s+3])
			if a == 0 {
				continue
			}

			d := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				blended := uint32(src.Pix[s+c])*a + uint32(dst.Pix[d+c])*(255-a)
				dst.Pix[d+c] = uint8((blended + 127) / 255)
			}
		}
	}
}
