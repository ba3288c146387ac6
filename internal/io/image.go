package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// thumbnailExtensions lists the sidecar image formats the engine may
// write, in lookup order.
var thumbnailExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// ImageService provides image processing operations for thumbnails.
//
// ImageService is used to:
//   - Convert thumbnail sidecars of any supported format to PNG
//   - Locate the thumbnail the download engine wrote next to a media file
//
// Example usage:
//
//	svc := NewImageService()
//
//	// Find whatever thumbnail the engine produced
//	thumb, ok := svc.FindThumbnail("/videos/Some Title")
//
//	// Normalize it to PNG for embedding and archival
//	pngPath, err := svc.ConvertFileToPNG(ctx, thumb)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// FindThumbnail looks for a thumbnail sidecar next to a media file.
//
// base is the media path without extension. Formats are probed in a
// fixed order (png, jpg, jpeg, webp) so repeated runs pick the same
// file. Returns the full path and true when one exists.
func (s *ImageService) FindThumbnail(base string) (string, bool) {
	for _, ext := range thumbnailExtensions {
		candidate := base + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// ConvertToPNG converts an image to PNG format.
//
// Supported input formats are PNG, JPEG, GIF, WebP and BMP. PNG input
// is re-encoded, which keeps downstream embedding code on a single
// path.
//
// Parameters:
//   - ctx: Context for cancellation (currently unused)
//   - data: Original image data
//
// Returns the image as PNG-encoded bytes.
func (s *ImageService) ConvertToPNG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ConvertFileToPNG converts an image file on disk to a PNG file next
// to it.
//
// The PNG gets the same stem as the source with a .png extension. A
// source that is already named .png is re-encoded in place. Any other
// source file is removed after a successful conversion, so at most one
// thumbnail remains per media file.
//
// Returns the path of the PNG file.
//
// Example:
//
//	pngPath, err := svc.ConvertFileToPNG(ctx, "/videos/Some Title.webp")
//	// pngPath == "/videos/Some Title.png"
func (s *ImageService) ConvertFileToPNG(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	converted, err := s.ConvertToPNG(ctx, data)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(path)
	target := strings.TrimSuffix(path, ext) + ".png"

	if err := os.WriteFile(target, converted, 0644); err != nil {
		return "", err
	}

	if !strings.EqualFold(ext, ".png") {
		if err := os.Remove(path); err != nil {
			return "", err
		}
	}

	return target, nil
}
