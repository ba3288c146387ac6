package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/QuesoDad/DownloadAllOfIt/internal/audio"
	"github.com/QuesoDad/DownloadAllOfIt/internal/config"
	ioutils "github.com/QuesoDad/DownloadAllOfIt/internal/io"
	"github.com/QuesoDad/DownloadAllOfIt/internal/metadata"
	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
)

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// execRunner executes commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// PostProcessor finalizes a downloaded media file:
//   - Thumbnail sidecar normalized to PNG
//   - Metadata embedded into the container (ffmpeg for video, ID3 for
//     audio), including the cover image
//   - Human-readable .txt metadata sidecar
//   - Modification times of all artifacts synced to the upload time
//
// Every step is best-effort: a failing step is logged and the rest
// still run. The media file itself is never deleted; the ffmpeg mux
// goes through a temp file and replaces the original only on success.
type PostProcessor struct {
	settings   *config.Settings
	ffmpegPath string
	images     *ioutils.ImageService
	tagger     *audio.Tagger
	runner     commandRunner
	onEvent    func(ProgressEvent)
}

// NewPostProcessor creates a PostProcessor. onEvent may be nil.
func NewPostProcessor(settings *config.Settings, ffmpegPath string, onEvent func(ProgressEvent)) *PostProcessor {
	return &PostProcessor{
		settings:   settings,
		ffmpegPath: ffmpegPath,
		images:     ioutils.NewImageService(),
		tagger:     audio.NewTagger(settings),
		runner:     execRunner{},
		onEvent:    onEvent,
	}
}

// Run applies all post-processing steps to one downloaded item.
func (p *PostProcessor) Run(ctx context.Context, mediaPath string, meta *model.Metadata, originalURL string) {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))

	pngPath := p.normalizeThumbnail(ctx, base)

	if p.settings.AudioOnly() {
		p.tagAudio(mediaPath, meta, pngPath)
	} else {
		p.muxVideo(ctx, mediaPath, meta, pngPath)
	}

	p.writeTextSidecar(base, meta, originalURL)

	if meta.Timestamp > 0 {
		ioutils.SyncFileTimes([]string{
			mediaPath,
			base + ".png",
			base + ".txt",
			base + ".info.json",
			base + ".description",
		}, meta.Timestamp)
	} else {
		p.event(LevelVerbose, "No upload timestamp for %s, keeping file times", filepath.Base(mediaPath))
	}
}

// normalizeThumbnail converts whatever thumbnail the engine wrote to
// PNG and returns its path, or "" when there is none.
func (p *PostProcessor) normalizeThumbnail(ctx context.Context, base string) string {
	found, ok := p.images.FindThumbnail(base)
	if !ok {
		return ""
	}
	pngPath, err := p.images.ConvertFileToPNG(ctx, found)
	if err != nil {
		p.warn("Thumbnail conversion failed for %s: %v", found, err)
		return ""
	}
	return pngPath
}

// tagAudio embeds metadata and cover art into an MP3 via ID3 frames.
func (p *PostProcessor) tagAudio(mediaPath string, meta *model.Metadata, pngPath string) {
	var cover []byte
	if pngPath != "" {
		data, err := os.ReadFile(pngPath)
		if err == nil {
			cover = data
		}
	}
	if err := p.tagger.SaveTags(mediaPath, meta, cover); err != nil {
		p.warn("Tagging failed for %s: %v", filepath.Base(mediaPath), err)
	}
}

// muxVideo rewrites the container with embedded metadata and cover
// art. The mux writes to a temp file first; the original is replaced
// only after ffmpeg exits cleanly, so a failed mux leaves the
// downloaded file untouched.
func (p *PostProcessor) muxVideo(ctx context.Context, mediaPath string, meta *model.Metadata, pngPath string) {
	args := p.buildMuxArgs(mediaPath, meta, pngPath)
	if args == nil {
		return
	}

	tempPath := args[len(args)-1]
	if err := p.runner.Run(ctx, p.ffmpegPath, args...); err != nil {
		os.Remove(tempPath)
		p.warn("Metadata mux failed for %s: %v", filepath.Base(mediaPath), err)
		return
	}
	if err := os.Rename(tempPath, mediaPath); err != nil {
		os.Remove(tempPath)
		p.warn("Could not replace %s after mux: %v", filepath.Base(mediaPath), err)
	}
}

// buildMuxArgs assembles the ffmpeg command line. Returns nil when
// there is nothing to embed. The last argument is always the temp
// output path.
func (p *PostProcessor) buildMuxArgs(mediaPath string, meta *model.Metadata, pngPath string) []string {
	var tags [][2]string
	if p.settings.EmbedTitle && meta.Title != "" {
		tags = append(tags, [2]string{"title", meta.Title})
	}
	if p.settings.EmbedUploader && meta.Uploader != "" {
		tags = append(tags, [2]string{"artist", meta.Uploader})
	}
	if p.settings.EmbedDescription && meta.Description != "" {
		tags = append(tags, [2]string{"description", meta.Description})
	}
	if len(tags) == 0 && pngPath == "" {
		return nil
	}

	ext := filepath.Ext(mediaPath)
	tempPath := strings.TrimSuffix(mediaPath, ext) + ".muxtmp" + ext

	args := []string{"-y", "-i", mediaPath}

	attachCover := pngPath != "" && strings.EqualFold(ext, ".mp4")
	if attachCover {
		args = append(args, "-i", pngPath, "-map", "0", "-map", "1")
	}
	args = append(args, "-c", "copy")
	if attachCover {
		args = append(args, "-disposition:v:1", "attached_pic")
	}
	if pngPath != "" && strings.EqualFold(ext, ".mkv") {
		args = append(args,
			"-attach", pngPath,
			"-metadata:s:t:0", "mimetype=image/png",
		)
	}
	for _, tag := range tags {
		args = append(args, "-metadata", tag[0]+"="+tag[1])
	}
	return append(args, tempPath)
}

// writeTextSidecar writes the human-readable metadata report.
func (p *PostProcessor) writeTextSidecar(base string, meta *model.Metadata, originalURL string) {
	text := metadata.Format(meta, originalURL)
	if err := os.WriteFile(base+".txt", []byte(text), 0644); err != nil {
		p.warn("Could not write metadata sidecar: %v", err)
	}
}

func (p *PostProcessor) warn(format string, args ...any) {
	p.event(LevelWarning, format, args...)
}

func (p *PostProcessor) event(level ProgressLevel, format string, args ...any) {
	if p.onEvent != nil {
		p.onEvent(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: level})
	}
}
