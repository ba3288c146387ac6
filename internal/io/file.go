package ioutils

import (
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// FallbackFileName is used when sanitization leaves nothing usable.
const FallbackFileName = "unknown_file"

// MaxFileNameLength bounds sanitized names in bytes.
const MaxFileNameLength = 255

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots   = regexp.MustCompile(`\.+$`)
	multiSpace     = regexp.MustCompile(`\s+`)
	reservedStems  = map[string]struct{}{}
	reservedBases  = []string{"CON", "PRN", "AUX", "NUL"}
	reservedSeries = []string{"COM", "LPT"}
)

func init() {
	for _, name := range reservedBases {
		reservedStems[name] = struct{}{}
	}
	for _, prefix := range reservedSeries {
		for i := 1; i <= 9; i++ {
			reservedStems[prefix+string(rune('0'+i))] = struct{}{}
		}
	}
}

// SanitizeFileName turns an arbitrary title into a name that is safe
// on common filesystems.
//
// The following transformations are applied, in order:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Multiple whitespace → single space
//   - Leading/trailing whitespace and trailing dots → removed
//   - Names longer than 255 bytes are truncated; a file extension, if
//     present, survives the cut (the stem is shortened instead)
//   - Reserved Windows device names (CON, PRN, AUX, NUL, COM1-COM9,
//     LPT1-LPT9) are prefixed with an underscore
//   - Empty or fully invalid input yields FallbackFileName
//
// The function is pure: no I/O, deterministic for a given input.
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = trailingDots.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	name = truncateName(name, MaxFileNameLength)

	stem := name
	if ext := filepath.Ext(name); ext != "" {
		stem = strings.TrimSuffix(name, ext)
	}
	if _, ok := reservedStems[strings.ToUpper(stem)]; ok {
		name = "_" + name
	}

	if strings.Trim(name, "_ ") == "" {
		return FallbackFileName
	}
	return name
}

// truncateName shortens name to at most max bytes without splitting a
// rune. When the name carries a short extension, the extension is kept
// and the stem is truncated instead.
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) > 16 || len(ext) >= max {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)

	budget := max - len(ext)
	cut := 0
	for i := range stem {
		if i > budget {
			break
		}
		cut = i
	}
	return stem[:cut] + ext
}

// EnsureDir creates a directory and all parent directories if they
// don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// SyncFileTimes sets the modification and access time of each listed
// file to the given unix timestamp. Paths that do not exist are
// skipped and logged; no file is ever created here.
func SyncFileTimes(paths []string, timestamp int64) {
	mtime := time.Unix(timestamp, 0)
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			log.Printf("skipping time update, file not found: %s", path)
			continue
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			log.Printf("failed to update times for %s: %v", path, err)
		}
	}
}
