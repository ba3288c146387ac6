package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/QuesoDad/DownloadAllOfIt/internal/config"
	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
)

// ErrCancelled is returned by Download when the caller's cancel
// predicate fired. Check for it with errors.Is.
var ErrCancelled = errors.New("download cancelled")

// progressRegex matches the engine's per-line progress output when
// started with --newline, e.g. "[download]  42.3% of 10MiB".
var progressRegex = regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%`)

// privateIndicators are stderr fragments that mark an item as
// inaccessible rather than transiently failing.
var privateIndicators = []string{
	"Private video",
	"This video is private",
	"This video is unavailable",
	"Sign in to confirm",
	"members-only",
	"Video unavailable",
}

// DownloadRequest describes a single media transfer.
type DownloadRequest struct {
	// URL of the video page.
	URL string

	// OutputBase is the destination path without extension; the
	// engine appends the container extension and sidecar suffixes.
	OutputBase string
}

// Engine shells out to an external yt-dlp compatible binary for
// metadata extraction and media transfer.
//
// All methods accept a context that, when cancelled, kills the child
// process. Download additionally polls a cancel predicate between
// output lines so a stop request takes effect mid-transfer.
type Engine struct {
	// BinaryPath is the yt-dlp executable, resolved by the caller.
	BinaryPath string

	settings *config.Settings
}

// NewEngine creates an Engine bound to a binary and settings.
func NewEngine(binaryPath string, settings *config.Settings) *Engine {
	return &Engine{BinaryPath: binaryPath, settings: settings}
}

// ExtractFlat fetches metadata for a URL without resolving nested
// entries or downloading anything. Playlist members come back as flat
// stubs (ID, title, URL); private members come back as null entries.
func (e *Engine) ExtractFlat(ctx context.Context, url string) (*model.Metadata, error) {
	args := []string{
		"--dump-single-json",
		"--flat-playlist",
		"--skip-download",
		"--ignore-errors",
	}
	args = e.appendCookies(args)
	args = append(args, url)

	return e.extract(ctx, args)
}

// Extract fetches the full metadata record for a single video. The
// playlist side of a video-in-playlist URL is ignored.
func (e *Engine) Extract(ctx context.Context, url string) (*model.Metadata, error) {
	args := []string{
		"--dump-single-json",
		"--no-playlist",
		"--skip-download",
	}
	args = e.appendCookies(args)
	args = append(args, url)

	return e.extract(ctx, args)
}

func (e *Engine) extract(ctx context.Context, args []string) (*model.Metadata, error) {
	cmd := exec.CommandContext(ctx, e.BinaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil && len(bytes.TrimSpace(output)) == 0 {
		// With --ignore-errors the engine can exit non-zero while
		// still printing usable JSON; only a silent failure is fatal.
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("metadata extraction failed: %s", firstLine(msg))
		}
		return nil, fmt.Errorf("metadata extraction failed: %w", err)
	}

	var meta model.Metadata
	if err := json.Unmarshal(bytes.TrimSpace(output), &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	return &meta, nil
}

// Download transfers one video and its sidecar files.
//
// onProgress receives percentages in the range 0 to 100 as parsed from
// the engine's output. cancelled is polled between output lines; when
// it returns true the child is killed and Download returns
// ErrCancelled. Either callback may be nil.
func (e *Engine) Download(ctx context.Context, req DownloadRequest, onProgress func(percent float64), cancelled func() bool) error {
	if cancelled != nil && cancelled() {
		return ErrCancelled
	}

	args := e.buildDownloadArgs(req)
	cmd := exec.CommandContext(ctx, e.BinaryPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return err
	}

	stopped := false
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if cancelled != nil && cancelled() {
			stopped = true
			cmd.Process.Kill()
			break
		}
		if onProgress == nil {
			continue
		}
		if matches := progressRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			if percent, err := strconv.ParseFloat(matches[1], 64); err == nil {
				onProgress(percent)
			}
		}
	}

	waitErr := cmd.Wait()
	if stopped {
		return ErrCancelled
	}
	if waitErr != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w | %s", waitErr, msg)
		}
		return waitErr
	}
	return nil
}

// buildDownloadArgs assembles the engine command line from the
// configured settings.
func (e *Engine) buildDownloadArgs(req DownloadRequest) []string {
	args := []string{
		req.URL,
		"-o", req.OutputBase + ".%(ext)s",
		"--newline",
		"--no-mtime",
		"--no-playlist",
		"--write-thumbnail",
		"--write-description",
		"--write-info-json",
		"--retries", strconv.Itoa(e.settings.MaxRetries),
		"--fragment-retries", strconv.Itoa(e.settings.FragmentRetries),
		"--concurrent-fragments", strconv.Itoa(e.settings.ConcurrentFragments),
	}

	if e.settings.DownloadSubtitles {
		args = append(args, "--write-subs", "--write-auto-subs")
	}

	if e.settings.AudioOnly() {
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "192")
	} else {
		args = append(args,
			"-f", e.settings.DownloadQuality+"+bestaudio/best",
			"--merge-output-format", e.settings.OutputFormat,
		)
	}

	return e.appendCookies(args)
}

func (e *Engine) appendCookies(args []string) []string {
	if e.settings.CookiesFile != "" {
		return append(args, "--cookies", e.settings.CookiesFile)
	}
	return args
}

// ClassifyError maps a Download or Extract error to a stable failure
// reason for batch reporting.
func ClassifyError(err error) string {
	if errors.Is(err, ErrCancelled) {
		return model.ReasonCancelled
	}
	msg := err.Error()
	for _, indicator := range privateIndicators {
		if strings.Contains(msg, indicator) {
			return model.ReasonPrivate
		}
	}
	return firstLine(msg)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
