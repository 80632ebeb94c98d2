package transform

import (
	"fmt"
	"image"
	"strings"
)

// Anchor names the reference point a watermark is placed against.
type Anchor int

const (
	TopLeft Anchor = iota
	TopRight
	BottomLeft
	BottomRight
	Center
)

var anchorNames = [...]string{
	TopLeft:     "top_left",
	TopRight:    "top_right",
	BottomLeft:  "bottom_left",
	BottomRight: "bottom_right",
	Center:      "center",
}

func (a Anchor) String() string {
	if a.valid() {
		return anchorNames[a]
	}
	return fmt.Sprintf("Anchor(%d)", int(a))
}

func (a Anchor) valid() bool {
	return a >= TopLeft && a <= Center
}

// ParseAnchor maps a position name such as "bottom_right" to its Anchor.
// Matching ignores case and accepts '-' in place of '_'.
func ParseAnchor(name string) (Anchor, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, n := range anchorNames {
		if n == key {
			return Anchor(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown position %q", ErrInvalidParameter, name)
}

// Offset returns the top-left corner at which an overlay of size overlay is
// drawn on a canvas of size canvas. The margin is kept between the overlay and
// the canvas edges it is anchored to; Center ignores it.
func (a Anchor) Offset(canvas, overlay image.Point, margin int) (image.Point, error) {
	right := canvas.X - overlay.X - margin
	bottom := canvas.Y - overlay.Y - margin

	switch a {
	case TopLeft:
		return image.Pt(margin, margin), nil
	case TopRight:
		return image.Pt(right, margin), nil
	case BottomLeft:
		return image.Pt(margin, bottom), nil
	case BottomRight:
		return image.Pt(right, bottom), nil
	case Center:
		return image.Pt(floorHalf(canvas.X-overlay.X), floorHalf(canvas.Y-overlay.Y)), nil
	}
	return image.Point{}, fmt.Errorf("%w: unknown position %v", ErrInvalidParameter, a)
}

// floorHalf divides by two rounding toward negative infinity.
func floorHalf(n int) int {
	return n >> 1
}
