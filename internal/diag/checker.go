// Package diag validates the external tools and paths a batch needs
// before any item starts.
package diag

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Tools holds the resolved binary paths of the external dependencies.
type Tools struct {
	YtDlpPath  string
	FFmpegPath string
}

// Checker validates external tools and the destination directory.
// Dependencies are injectable for tests.
type Checker struct {
	lookPath   func(string) (string, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// NewCheckerForTests builds a checker with injected dependencies. Nil
// fields fall back to the real implementations.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	c := NewChecker()
	if lookPath != nil {
		c.lookPath = lookPath
	}
	if mkdirAll != nil {
		c.mkdirAll = mkdirAll
	}
	if createTemp != nil {
		c.createTemp = createTemp
	}
	if remove != nil {
		c.remove = remove
	}
	return c
}

// Check verifies that yt-dlp and ffmpeg are on PATH and that the
// destination directory exists (or can be created) and is writable.
// Any failure here is fatal for the whole batch, not per-item.
func (c *Checker) Check(destDir string) (Tools, error) {
	ytdlpPath, err := c.lookPath("yt-dlp")
	if err != nil {
		return Tools{}, fmt.Errorf("yt-dlp not found in PATH: %w", err)
	}
	ffmpegPath, err := c.lookPath("ffmpeg")
	if err != nil {
		return Tools{}, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	if destDir == "" {
		return Tools{}, fmt.Errorf("destination directory not set")
	}
	if err := c.mkdirAll(destDir, 0755); err != nil {
		return Tools{}, fmt.Errorf("cannot create destination %s: %w", destDir, err)
	}
	probe, err := c.createTemp(destDir, ".write-probe-*")
	if err != nil {
		return Tools{}, fmt.Errorf("destination %s is not writable: %w", destDir, err)
	}
	name := probe.Name()
	probe.Close()
	if err := c.remove(name); err != nil {
		return Tools{}, fmt.Errorf("cannot clean up probe file in %s: %w", destDir, err)
	}

	return Tools{
		YtDlpPath:  filepath.Clean(ytdlpPath),
		FFmpegPath: filepath.Clean(ffmpegPath),
	}, nil
}
