// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - File modification-time synchronization
//   - Thumbnail format normalization
//
// # Filename Sanitization
//
// Use SanitizeFileName to turn video titles into safe names:
//
//	safe := ioutils.SanitizeFileName("Clip: Part 1/2") // Returns "Clip_ Part 1_2"
//
// # Timestamp Synchronization
//
// After a download finishes, every artifact belonging to an item gets
// the upload timestamp of the source:
//
//	ioutils.SyncFileTimes([]string{videoPath, pngPath, txtPath}, meta.Timestamp)
//
// # Image Processing
//
// The ImageService normalizes thumbnail sidecars:
//
//	svc := ioutils.NewImageService()
//
//	// Locate whatever the engine wrote
//	thumb, ok := svc.FindThumbnail("/videos/Some Title")
//
//	// Convert to PNG
//	pngPath, _ := svc.ConvertFileToPNG(ctx, thumb)
package ioutils
