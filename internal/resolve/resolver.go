// Package resolve expands user input into a flat list of video URLs.
//
// A single input line can name a video, a playlist, or a playlist of
// playlists. The Resolver flattens all of them into individually
// downloadable page URLs, in input order, and accounts for every
// member it could not resolve.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
)

// watchURLTemplate qualifies bare video IDs reported by flat playlist
// extraction.
const watchURLTemplate = "https://www.youtube.com/watch?v=%s"

// flatExtractor is the metadata side of the download engine.
type flatExtractor interface {
	ExtractFlat(ctx context.Context, url string) (*model.Metadata, error)
}

// Item is one downloadable video produced by resolution.
type Item struct {
	// URL of the video page.
	URL string

	// Playlist is the title of the playlist the video came from, or
	// empty for direct video inputs. Used for output subfolders.
	Playlist string
}

// Result carries the outcome of a resolution pass.
type Result struct {
	// Items lists one entry per downloadable video, in the order the
	// inputs (and their playlist members) were encountered.
	Items []Item

	// Failures records every input or playlist member that did not
	// resolve to a downloadable URL.
	Failures []model.FailureRecord
}

// Resolver flattens inputs using a metadata extractor.
type Resolver struct {
	extractor flatExtractor

	// OnInfo, when set, receives one human-readable line per
	// resolution step.
	OnInfo func(msg string)
}

// NewResolver creates a Resolver around an extractor.
func NewResolver(extractor flatExtractor) *Resolver {
	return &Resolver{extractor: extractor}
}

// Resolve expands raw input URLs into downloadable video URLs.
//
// Playlists are flattened recursively; a playlist member that is
// itself a playlist is expanded in place. Members the source reports
// as null (private or deleted) become failure records attributed to
// the enclosing playlist URL.
//
// cancelled is polled before each extraction. When it fires, Resolve
// returns everything resolved so far; partial results stay valid.
func (r *Resolver) Resolve(ctx context.Context, rawURLs []string, cancelled func() bool) Result {
	var result Result
	seen := make(map[string]bool)

	for _, raw := range rawURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if cancelled != nil && cancelled() {
			return result
		}
		r.resolveOne(ctx, raw, "", seen, cancelled, &result)
	}
	return result
}

func (r *Resolver) resolveOne(ctx context.Context, url, playlist string, seen map[string]bool, cancelled func() bool, result *Result) {
	if seen[url] {
		return
	}
	seen[url] = true

	r.info("resolving %s", url)
	meta, err := r.extractor.ExtractFlat(ctx, url)
	if err != nil {
		result.Failures = append(result.Failures, model.FailureRecord{
			URL:    url,
			Reason: model.ReasonNoMetadata,
		})
		r.info("no metadata for %s: %v", url, err)
		return
	}
	if meta == nil {
		result.Failures = append(result.Failures, model.FailureRecord{
			URL:    url,
			Reason: model.ReasonNoMetadata,
		})
		return
	}

	if !meta.IsPlaylist() {
		switch meta.Type {
		case "", "url", "video":
			result.Items = append(result.Items, Item{
				URL:      qualifyURL(meta.BestURL(), url),
				Playlist: playlist,
			})
		default:
			result.Failures = append(result.Failures, model.FailureRecord{
				URL:    url,
				Reason: model.UnhandledTypeReason(meta.Type),
			})
		}
		return
	}

	r.info("playlist %q with %d entries", meta.Title, len(meta.Entries))
	for _, entry := range meta.Entries {
		if cancelled != nil && cancelled() {
			return
		}
		if entry == nil {
			result.Failures = append(result.Failures, model.FailureRecord{
				URL:    url,
				Reason: model.ReasonPrivate,
			})
			continue
		}

		switch entry.Type {
		case "playlist":
			// Playlist-of-playlists: expand the nested list in place.
			r.resolveOne(ctx, qualifyURL(entry.BestURL(), url), meta.Title, seen, cancelled, result)
		case "", "url", "video":
			result.Items = append(result.Items, Item{
				URL:      qualifyURL(entry.BestURL(), url),
				Playlist: meta.Title,
			})
		default:
			result.Failures = append(result.Failures, model.FailureRecord{
				URL:    qualifyURL(entry.BestURL(), url),
				Reason: model.UnhandledTypeReason(entry.Type),
			})
		}
	}
}

// qualifyURL turns a flat entry link into an absolute page URL. Bare
// video IDs are expanded with the watch template; anything already
// absolute passes through. An empty link falls back to the parent URL
// so failure records never lose their origin.
func qualifyURL(link, parent string) string {
	if link == "" {
		return parent
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return fmt.Sprintf(watchURLTemplate, link)
}

func (r *Resolver) info(format string, args ...any) {
	if r.OnInfo != nil {
		r.OnInfo(fmt.Sprintf(format, args...))
	}
}
