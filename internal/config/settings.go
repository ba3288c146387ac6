package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Output container formats supported by the downloader.
const (
	FormatMP4 = "mp4"
	FormatMKV = "mkv"
	FormatMP3 = "mp3"
)

// Settings holds all configuration options. The batch core treats a
// Settings value as read-only.
type Settings struct {
	// Download settings
	OutputFormat        string `json:"output_format"`    // mp4, mkv or mp3
	DownloadQuality     string `json:"download_quality"` // engine format selector, e.g. "bestvideo"
	DownloadSubtitles   bool   `json:"download_subtitles"`
	MaxRetries          int    `json:"max_retries"`
	FragmentRetries     int    `json:"fragment_retries"`
	ConcurrentFragments int    `json:"concurrent_fragments"`

	// Folder layout
	UseYearSubfolders bool `json:"use_year_subfolders"`

	// Metadata embedding
	EmbedTitle       bool `json:"embed_title"`
	EmbedUploader    bool `json:"embed_uploader"`
	EmbedDescription bool `json:"embed_description"`

	// Thumbnail preview fetch timeout in seconds. This bounds the
	// best-effort preview download only, not the engine's own
	// thumbnail sidecar write.
	ThumbnailTimeoutSec int `json:"thumbnail_timeout_sec"`

	// Paths
	OutputDir   string `json:"output_dir"`
	CookiesFile string `json:"cookies_file"`
	LedgerPath  string `json:"ledger_path"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		OutputFormat:        FormatMP4,
		DownloadQuality:     "bestvideo",
		DownloadSubtitles:   false,
		MaxRetries:          3,
		FragmentRetries:     3,
		ConcurrentFragments: 5,

		UseYearSubfolders: false,

		EmbedTitle:       true,
		EmbedUploader:    true,
		EmbedDescription: true,

		ThumbnailTimeoutSec: 10,

		OutputDir:  filepath.Join(homeDir, "Downloads", "DownloadAllOfIt"),
		LedgerPath: filepath.Join(homeDir, ".config", "downloadallofit", "downloaded.db"),
	}
}

// AudioOnly reports whether the configured output format is an
// audio-only container.
func (s *Settings) AudioOnly() bool {
	return s.OutputFormat == FormatMP3
}

// Validate checks field combinations that would make a batch fail in
// confusing ways later.
func (s *Settings) Validate() error {
	switch s.OutputFormat {
	case FormatMP4, FormatMKV, FormatMP3:
	default:
		return fmt.Errorf("unsupported output format: %q", s.OutputFormat)
	}
	if s.DownloadQuality == "" {
		return fmt.Errorf("download quality selector must not be empty")
	}
	return nil
}

// Load reads settings from a JSON file. A missing file yields the
// defaults rather than an error.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
