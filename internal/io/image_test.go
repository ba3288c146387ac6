package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func makeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageService_ConvertToPNG(t *testing.T) {
	svc := NewImageService()

	converted, err := svc.ConvertToPNG(context.Background(), makeJPEG(t))
	if err != nil {
		t.Fatalf("ConvertToPNG() error = %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(converted))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if format != "png" {
		t.Errorf("result format = %q, want png", format)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("dimensions changed: %v", img.Bounds())
	}
}

func TestImageService_ConvertToPNG_InvalidData(t *testing.T) {
	svc := NewImageService()
	if _, err := svc.ConvertToPNG(context.Background(), []byte("not an image")); err == nil {
		t.Error("expected error for invalid image data")
	}
}

func TestImageService_ConvertFileToPNG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "thumb.jpg")
	if err := os.WriteFile(src, makeJPEG(t), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewImageService()
	target, err := svc.ConvertFileToPNG(context.Background(), src)
	if err != nil {
		t.Fatalf("ConvertFileToPNG() error = %v", err)
	}

	if target != filepath.Join(dir, "thumb.png") {
		t.Errorf("target = %q", target)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading target: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("target is not valid PNG: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("non-PNG source should be removed after conversion")
	}
}

func TestImageService_ConvertFileToPNG_KeepsPNGSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "thumb.png")

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewImageService()
	target, err := svc.ConvertFileToPNG(context.Background(), src)
	if err != nil {
		t.Fatalf("ConvertFileToPNG() error = %v", err)
	}
	if target != src {
		t.Errorf("target = %q, want in-place %q", target, src)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("PNG source must survive: %v", err)
	}
}

func TestImageService_FindThumbnail(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "video")

	svc := NewImageService()
	if _, ok := svc.FindThumbnail(base); ok {
		t.Error("no thumbnail exists yet, ok should be false")
	}

	if err := os.WriteFile(base+".webp", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(base+".jpg", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, ok := svc.FindThumbnail(base)
	if !ok {
		t.Fatal("thumbnail should be found")
	}
	// jpg comes before webp in the probe order.
	if got != base+".jpg" {
		t.Errorf("FindThumbnail() = %q, want %q", got, base+".jpg")
	}
}
