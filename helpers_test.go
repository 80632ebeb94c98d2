package transform

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

// solid returns a w x h image filled with c.
func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.WriteFile(path, pngBytes(t, img), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
