package ioutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"colon and slash", "Clip: Part 1/2", "Clip_ Part 1_2"},
		{"trailing dots", "Track...", "Track"},
		{"multiple spaces", "Name   with  spaces", "Name with spaces"},
		{"leading whitespace", "  padded", "padded"},
		{"control characters", "a\x00b\x1fc", "a_b_c"},
		{"backslash and pipe", `a\b|c`, "a_b_c"},
		{"question and star", "what?*", "what_"},
		{"reserved name", "CON", "_CON"},
		{"reserved name lowercase", "nul", "_nul"},
		{"reserved with extension", "COM1.mp4", "_COM1.mp4"},
		{"reserved as prefix only", "CONTENT", "CONTENT"},
		{"empty input", "", "unknown_file"},
		{"only invalid characters", "???", "unknown_file"},
		{"only dots", "...", "unknown_file"},
		{"unicode preserved", "日本語タイトル", "日本語タイトル"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName_Truncation(t *testing.T) {
	long := strings.Repeat("a", 300) + ".mp4"
	got := SanitizeFileName(long)

	if len(got) > MaxFileNameLength {
		t.Errorf("sanitized name is %d bytes, want <= %d", len(got), MaxFileNameLength)
	}
	if !strings.HasSuffix(got, ".mp4") {
		t.Errorf("extension should survive truncation, got %q", got[len(got)-8:])
	}
}

func TestSanitizeFileName_TruncationMultibyte(t *testing.T) {
	long := strings.Repeat("語", 200)
	got := SanitizeFileName(long)

	if len(got) > MaxFileNameLength {
		t.Errorf("sanitized name is %d bytes, want <= %d", len(got), MaxFileNameLength)
	}
	// No partial rune at the cut point.
	for _, r := range got {
		if r != '語' {
			t.Fatalf("found mangled rune %q in truncated name", r)
		}
	}
}

func TestSanitizeFileName_Deterministic(t *testing.T) {
	input := "Some: Title/With Bad*Chars?"
	first := SanitizeFileName(input)
	second := SanitizeFileName(first)
	if first != second {
		t.Errorf("sanitization is not idempotent: %q -> %q", first, second)
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("created path is not a directory")
	}

	// Creating it again must not fail.
	if err := EnsureDir(path); err != nil {
		t.Errorf("EnsureDir() on existing dir error = %v", err)
	}
}

func TestSyncFileTimes(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(existing, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "nope.png")

	timestamp := int64(1700000000)
	SyncFileTimes([]string{existing, missing, ""}, timestamp)

	info, err := os.Stat(existing)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(time.Unix(timestamp, 0)) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), time.Unix(timestamp, 0))
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("missing file must not be created")
	}
}
