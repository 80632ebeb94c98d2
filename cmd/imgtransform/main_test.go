package main

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func readSize(t *testing.T, path string) image.Point {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return image.Pt(cfg.Width, cfg.Height)
}

func TestRun_Commands(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.png")
	mark := filepath.Join(dir, "logo.png")
	writePNG(t, in, 100, 80, color.NRGBA{R: 20, G: 40, B: 60, A: 255})
	writePNG(t, mark, 30, 15, color.NRGBA{R: 255, A: 255})

	cases := []struct {
		name     string
		args     []string
		wantPath string
		wantSize image.Point
	}{
		{name: "blur", args: []string{"blur", "-in", in, "-radius", "2"}, wantPath: filepath.Join(dir, "photo_blur.png"), wantSize: image.Pt(100, 80)},
		{name: "lowres", args: []string{"lowres", "-in", in, "-scale", "0.5"}, wantPath: filepath.Join(dir, "photo_lowres.png"), wantSize: image.Pt(50, 40)},
		{name: "scale", args: []string{"scale", "-in", in, "-sx", "1.5", "-sy", "0.5", "-resample", "nearest"}, wantPath: filepath.Join(dir, "photo_nonuniform.png"), wantSize: image.Pt(150, 40)},
		{name: "watermark", args: []string{"watermark", "-in", in, "-mark", mark, "-position", "center"}, wantPath: filepath.Join(dir, "photo_watermarked.png"), wantSize: image.Pt(100, 80)},
		{name: "explicit out", args: []string{"blur", "-in", in, "-out", filepath.Join(dir, "soft.jpg")}, wantPath: filepath.Join(dir, "soft.jpg"), wantSize: image.Pt(100, 80)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tc.args, &stdout, &stderr); code != 0 {
				t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
			}
			if !strings.Contains(stdout.String(), tc.wantPath) {
				t.Errorf("stdout %q does not mention %s", stdout.String(), tc.wantPath)
			}
			if got := readSize(t, tc.wantPath); got != tc.wantSize {
				t.Errorf("output size = %v, want %v", got, tc.wantSize)
			}
		})
	}
}

func TestRun_OutBase64(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, 40, 20, color.NRGBA{G: 200, A: 255})

	var stdout, stderr bytes.Buffer
	if code := run([]string{"lowres", "-in", in, "-scale", "0.25", "-outbase64"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(stdout.String()))
	if err != nil {
		t.Fatalf("stdout is not base64: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if cfg.Width != 10 || cfg.Height != 5 {
		t.Fatalf("size = %dx%d, want 10x5", cfg.Width, cfg.Height)
	}

	if _, err := os.Stat(filepath.Join(dir, "photo_lowres.png")); !os.IsNotExist(err) {
		t.Fatalf("no file should be written with -outbase64, stat err = %v", err)
	}
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.png")
	mark := filepath.Join(dir, "logo.png")
	writePNG(t, in, 20, 20, color.NRGBA{A: 255})
	writePNG(t, mark, 10, 10, color.NRGBA{A: 255})

	cases := []struct {
		name string
		args []string
		want int
	}{
		{name: "no command", args: nil, want: 2},
		{name: "unknown command", args: []string{"sharpen", "-in", in}, want: 2},
		{name: "missing input", args: []string{"blur"}, want: 2},
		{name: "missing mark", args: []string{"watermark", "-in", in}, want: 2},
		{name: "bad flag value", args: []string{"blur", "-in", in, "-radius", "soft"}, want: 2},
		{name: "negative radius", args: []string{"blur", "-in", in, "-radius", "-1"}, want: 1},
		{name: "scale out of range", args: []string{"lowres", "-in", in, "-scale", "1"}, want: 1},
		{name: "bad position", args: []string{"watermark", "-in", in, "-mark", mark, "-position", "middle"}, want: 1},
		{name: "bad opacity", args: []string{"watermark", "-in", in, "-mark", mark, "-opacity", "1.1"}, want: 1},
		{name: "unreadable input", args: []string{"blur", "-in", filepath.Join(dir, "absent.png")}, want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tc.args, &stdout, &stderr); code != tc.want {
				t.Fatalf("exit code %d, want %d (stderr: %s)", code, tc.want, stderr.String())
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("failed commands must not write files, found %d entries", len(entries))
	}
}
