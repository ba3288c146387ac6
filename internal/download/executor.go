package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/QuesoDad/DownloadAllOfIt/internal/config"
	"github.com/QuesoDad/DownloadAllOfIt/internal/http"
	ioutils "github.com/QuesoDad/DownloadAllOfIt/internal/io"
	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
	"github.com/QuesoDad/DownloadAllOfIt/internal/ytdlp"
)

// Outcome classifies how Execute finished for one item.
type Outcome int

const (
	// OutcomeDownloaded means the item was transferred and
	// post-processed in this run.
	OutcomeDownloaded Outcome = iota

	// OutcomeSkipped means the item was already present, per the
	// ledger or an existing output file.
	OutcomeSkipped

	// OutcomeCancelled means a stop request ended the item before it
	// completed. The batch must not start further items.
	OutcomeCancelled

	// OutcomeFailed means the item could not be downloaded; Reason
	// carries the classification.
	OutcomeFailed
)

// Item is one unit of work for the Executor.
type Item struct {
	// URL of the video page.
	URL string

	// Playlist is the title of the playlist the item came from, used
	// as an output subfolder. Empty for direct video inputs.
	Playlist string
}

// ItemResult reports what Execute did.
type ItemResult struct {
	Outcome    Outcome
	OutputPath string
	Title      string

	// Reason is set for OutcomeFailed.
	Reason string
}

// engineAPI is the slice of the download engine the Executor uses.
type engineAPI interface {
	Extract(ctx context.Context, url string) (*model.Metadata, error)
	Download(ctx context.Context, req ytdlp.DownloadRequest, onProgress func(percent float64), cancelled func() bool) error
}

// downloadLedger records completed URLs across runs.
type downloadLedger interface {
	Lookup(url string) (path string, found bool, err error)
	Record(url, path, title string) error
}

// thumbnailFetcher pulls preview image bytes.
type thumbnailFetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// postProcessor finalizes a downloaded media file.
type postProcessor interface {
	Run(ctx context.Context, mediaPath string, meta *model.Metadata, originalURL string)
}

// Callbacks receive per-item signals during Execute. Any field may be
// nil.
type Callbacks struct {
	// OnEvent receives leveled log messages.
	OnEvent func(ProgressEvent)

	// OnProgress receives transfer percentages from 0 to 100.
	OnProgress func(percent float64)

	// OnThumbnail receives PNG preview bytes once they are fetched.
	OnThumbnail func(data []byte)

	// OnDescription receives the item's description text before the
	// transfer starts.
	OnDescription func(text string)
}

// Executor downloads a single resolved item end to end: metadata
// fetch, destination layout, engine transfer with a concurrent
// thumbnail preview fetch, post-processing, and the ledger record.
type Executor struct {
	settings   *config.Settings
	engine     engineAPI
	ledger     downloadLedger
	thumbs     thumbnailFetcher
	images     *ioutils.ImageService
	post       postProcessor
	outputRoot string
	callbacks  Callbacks
}

// NewExecutor wires an Executor for a destination root. ffmpegPath
// must point at a usable ffmpeg binary; preflight checks run before
// the batch starts, not here.
func NewExecutor(settings *config.Settings, engine engineAPI, ledger downloadLedger, ffmpegPath, outputRoot string, callbacks Callbacks) *Executor {
	e := &Executor{
		settings:   settings,
		engine:     engine,
		ledger:     ledger,
		thumbs:     http.NewClient(time.Duration(settings.ThumbnailTimeoutSec) * time.Second),
		images:     ioutils.NewImageService(),
		outputRoot: outputRoot,
		callbacks:  callbacks,
	}
	e.post = NewPostProcessor(settings, ffmpegPath, callbacks.OnEvent)
	return e
}

// Execute processes one item. It never returns an error; every
// failure mode maps to an ItemResult the batch can aggregate.
func (e *Executor) Execute(ctx context.Context, item Item, cancelled func() bool) ItemResult {
	if cancelled != nil && cancelled() {
		return ItemResult{Outcome: OutcomeCancelled}
	}

	meta, err := e.engine.Extract(ctx, item.URL)
	if err != nil {
		if ytdlp.ClassifyError(err) == model.ReasonCancelled {
			return ItemResult{Outcome: OutcomeCancelled}
		}
		// A video whose full metadata cannot be fetched is treated as
		// inaccessible; unresolvable URLs were already weeded out
		// during resolution.
		e.event(LevelError, "Metadata fetch failed for %s: %v", item.URL, err)
		return ItemResult{Outcome: OutcomeFailed, Reason: model.ReasonPrivate}
	}
	if meta == nil {
		return ItemResult{Outcome: OutcomeFailed, Reason: model.ReasonPrivate}
	}

	title := meta.Title
	if title == "" {
		title = meta.ID
	}
	if e.callbacks.OnDescription != nil {
		e.callbacks.OnDescription(meta.Description)
	}

	destDir, err := e.destinationDir(item, meta)
	if err != nil {
		e.event(LevelError, "Cannot create destination for %s: %v", title, err)
		return ItemResult{Outcome: OutcomeFailed, Reason: fmt.Sprintf("destination: %v", err)}
	}

	outputBase := filepath.Join(destDir, ioutils.SanitizeFileName(title))
	finalPath := outputBase + "." + e.settings.OutputFormat

	if path, found, err := e.ledger.Lookup(item.URL); err == nil && found {
		e.event(LevelVerbose, "Skipping (already downloaded): %s", title)
		return ItemResult{Outcome: OutcomeSkipped, OutputPath: path, Title: title}
	}
	if _, err := os.Stat(finalPath); err == nil {
		e.event(LevelVerbose, "Skipping (file exists): %s", finalPath)
		return ItemResult{Outcome: OutcomeSkipped, OutputPath: finalPath, Title: title}
	}

	e.event(LevelInfo, "Downloading: %s", title)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.fetchThumbnailPreview(gctx, meta.Thumbnail)
		return nil
	})
	g.Go(func() error {
		return e.engine.Download(gctx, ytdlp.DownloadRequest{
			URL:        item.URL,
			OutputBase: outputBase,
		}, e.callbacks.OnProgress, cancelled)
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, ytdlp.ErrCancelled) {
			e.event(LevelWarning, "Cancelled: %s", title)
			return ItemResult{Outcome: OutcomeCancelled, Title: title}
		}
		e.event(LevelError, "Download failed for %s: %v", title, err)
		return ItemResult{Outcome: OutcomeFailed, Title: title, Reason: ytdlp.ClassifyError(err)}
	}

	e.post.Run(ctx, finalPath, meta, item.URL)

	if err := e.ledger.Record(item.URL, finalPath, title); err != nil {
		e.event(LevelWarning, "Could not record %s in ledger: %v", title, err)
	}

	e.event(LevelSuccess, "Downloaded: %s", filepath.Base(finalPath))
	return ItemResult{Outcome: OutcomeDownloaded, OutputPath: finalPath, Title: title}
}

// destinationDir builds and creates the output directory:
// root/channel[/playlist][/year].
func (e *Executor) destinationDir(item Item, meta *model.Metadata) (string, error) {
	dir := filepath.Join(e.outputRoot, ioutils.SanitizeFileName(meta.ChannelName()))
	if item.Playlist != "" {
		dir = filepath.Join(dir, ioutils.SanitizeFileName(item.Playlist))
	}
	if e.settings.UseYearSubfolders {
		if year := meta.UploadYear(); year != "" {
			dir = filepath.Join(dir, year)
		}
	}
	if err := ioutils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// fetchThumbnailPreview pulls the thumbnail for live display. It runs
// concurrently with the transfer, is bounded by the configured
// timeout, and never fails the item.
func (e *Executor) fetchThumbnailPreview(ctx context.Context, url string) {
	if url == "" || e.callbacks.OnThumbnail == nil {
		return
	}

	timeout := time.Duration(e.settings.ThumbnailTimeoutSec) * time.Second
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := e.thumbs.Get(fetchCtx, url)
	if err != nil {
		e.event(LevelVerbose, "Thumbnail preview unavailable: %v", err)
		return
	}
	converted, err := e.images.ConvertToPNG(fetchCtx, data)
	if err != nil {
		e.event(LevelVerbose, "Thumbnail preview not decodable: %v", err)
		return
	}
	e.callbacks.OnThumbnail(converted)
}

func (e *Executor) event(level ProgressLevel, format string, args ...any) {
	if e.callbacks.OnEvent != nil {
		e.callbacks.OnEvent(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: level})
	}
}
