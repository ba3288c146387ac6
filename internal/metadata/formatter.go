// Package metadata renders video metadata into the text forms the
// downloader persists and embeds.
//
// The main entry point is Format, which produces the sidecar text
// written next to every downloaded file:
//
//	text := metadata.Format(meta, originalURL)
//	os.WriteFile(title+".txt", []byte(text), 0644)
package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
)

// Format renders metadata as a human-readable report with three fixed
// sections. Every key is always present; unknown values render as
// empty so two runs over the same input produce identical bytes.
func Format(meta *model.Metadata, originalURL string) string {
	sections := []string{
		basicInfo(meta),
		technicalInfo(meta),
		otherInfo(meta, originalURL),
	}
	return strings.Join(sections, "\n\n")
}

func basicInfo(meta *model.Metadata) string {
	var b strings.Builder
	b.WriteString("Basic Info:\n")
	writeLine(&b, "Title", meta.Title)
	writeLine(&b, "Uploader", meta.Uploader)
	writeLine(&b, "Upload date", formatDate(meta.UploadDate))
	writeLine(&b, "Duration", formatDuration(meta.Duration))
	writeLine(&b, "View count", formatCount(meta.ViewCount))
	writeLine(&b, "Like count", formatCount(meta.LikeCount))
	writeLine(&b, "Description", meta.Description)
	writeLine(&b, "Tags", strings.Join(meta.Tags, ", "))
	return strings.TrimRight(b.String(), "\n")
}

func technicalInfo(meta *model.Metadata) string {
	var b strings.Builder
	b.WriteString("Technical Info:\n")
	writeLine(&b, "Format", meta.Format)
	writeLine(&b, "Format ID", meta.FormatID)
	writeLine(&b, "Resolution", meta.Resolution)
	writeLine(&b, "FPS", formatFloat(meta.FPS))
	writeLine(&b, "Video Codec", meta.VideoCodec)
	writeLine(&b, "Audio Codec", meta.AudioCodec)
	return strings.TrimRight(b.String(), "\n")
}

func otherInfo(meta *model.Metadata, originalURL string) string {
	var b strings.Builder
	b.WriteString("Other Info:\n")
	writeLine(&b, "Categories", strings.Join(meta.Categories, ", "))
	writeLine(&b, "License", meta.License)
	writeLine(&b, "Age Limit", formatCount(int64(meta.AgeLimit)))
	writeLine(&b, "Webpage URL", meta.WebpageURL)
	writeLine(&b, "Original URL", originalURL)
	return strings.TrimRight(b.String(), "\n")
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

// formatDate turns an engine date (YYYYMMDD) into YYYY-MM-DD. Values
// in any other shape pass through unchanged.
func formatDate(date string) string {
	if len(date) != 8 {
		return date
	}
	for _, r := range date {
		if r < '0' || r > '9' {
			return date
		}
	}
	return date[:4] + "-" + date[4:6] + "-" + date[6:]
}

// formatDuration renders a duration in seconds as H:MM:SS or M:SS.
func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatCount(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
