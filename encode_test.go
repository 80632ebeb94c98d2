package transform

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.png":        FormatPNG,
		"dir/b.JPG":    FormatJPEG,
		"c.jpeg":       FormatJPEG,
		"d.gif":        FormatGIF,
		"e.tif":        FormatTIFF,
		"f.bmp":        FormatBMP,
		"g.webp":       FormatWebP,
		"h.final.tiff": FormatTIFF,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}

	for _, bad := range []string{"photo", "photo.heic", "archive.tar.gz"} {
		_, err := FormatFromPath(bad)
		if !errors.Is(err, ErrUnsupportedFormat) || !errors.Is(err, ErrEncode) {
			t.Errorf("FormatFromPath(%q) err = %v, want ErrUnsupportedFormat", bad, err)
		}
	}
}

func TestDerivePath(t *testing.T) {
	cases := []struct {
		in, suffix, want string
	}{
		{"photo.png", SuffixBlur, "photo_blur.png"},
		{filepath.Join("dir", "photo.final.jpg"), SuffixLowRes, filepath.Join("dir", "photo.final_lowres.jpg")},
		{"photo", SuffixWatermarked, "photo_watermarked"},
	}
	for _, tc := range cases {
		if got := DerivePath(tc.in, tc.suffix); got != tc.want {
			t.Errorf("DerivePath(%q, %q) = %q, want %q", tc.in, tc.suffix, got, tc.want)
		}
	}
}

func TestEncode_DecodesBack(t *testing.T) {
	src := solid(16, 8, color.NRGBA{R: 40, G: 80, B: 120, A: 255})

	for _, f := range []Format{FormatPNG, FormatJPEG, FormatGIF, FormatTIFF, FormatBMP} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, f, EncodeOptions{}); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			img, format, err := Decode(&buf)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if format != string(f) {
				t.Errorf("format = %q, want %q", format, f)
			}
			if img.Bounds().Size() != image.Pt(16, 8) {
				t.Errorf("size = %v, want 16x8", img.Bounds().Size())
			}
		})
	}
}

func TestEncode_WebPLossless(t *testing.T) {
	src := solid(8, 8, color.NRGBA{R: 200, G: 10, B: 60, A: 255})

	var buf bytes.Buffer
	if err := Encode(&buf, src, FormatWebP, EncodeOptions{WebPLossless: true}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, format, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "webp" {
		t.Fatalf("format = %q, want webp", format)
	}
	r, g, b, _ := img.At(3, 3).RGBA()
	if r>>8 != 200 || g>>8 != 10 || b>>8 != 60 {
		t.Fatalf("lossless webp pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestEncode_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil, FormatPNG, EncodeOptions{}); !errors.Is(err, ErrEncode) {
		t.Errorf("nil image: expected ErrEncode, got %v", err)
	}
	if err := Encode(&buf, solid(1, 1, navy), Format("heic"), EncodeOptions{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("heic: expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestClampQuality(t *testing.T) {
	cases := []struct{ in, want int }{{0, 75}, {-3, 75}, {50, 50}, {150, 100}}
	for _, tc := range cases {
		if got := clampQuality(tc.in, 75); got != tc.want {
			t.Errorf("clampQuality(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
