package model

// Metadata is the typed record decoded from the extraction engine's JSON
// output. The engine reports many more keys than listed here; only the
// fields the downloader consumes are mapped. Missing keys decode to zero
// values, so callers never need per-key existence checks.
//
// For playlists the engine sets Type to "playlist" and fills Entries.
// Entries may contain nil elements: the engine emits JSON null for
// private or deleted playlist members.
type Metadata struct {
	Type        string   `json:"_type"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Uploader    string   `json:"uploader"`
	Channel     string   `json:"channel"`
	UploadDate  string   `json:"upload_date"` // YYYYMMDD
	Timestamp   int64    `json:"timestamp"`   // unix upload time, 0 if unknown
	Duration    float64  `json:"duration"`    // seconds
	ViewCount   int64    `json:"view_count"`
	LikeCount   int64    `json:"like_count"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`

	Format     string  `json:"format"`
	FormatID   string  `json:"format_id"`
	Resolution string  `json:"resolution"`
	FPS        float64 `json:"fps"`
	VideoCodec string  `json:"vcodec"`
	AudioCodec string  `json:"acodec"`

	Categories  []string `json:"categories"`
	License     string   `json:"license"`
	AgeLimit    int      `json:"age_limit"`
	WebpageURL  string   `json:"webpage_url"`
	OriginalURL string   `json:"original_url"`
	Thumbnail   string   `json:"thumbnail"`

	// URL is the entry-level link reported in flat playlist listings.
	// It may be relative or a bare video ID depending on the site.
	URL string `json:"url"`

	Entries []*Metadata `json:"entries"`
}

// IsPlaylist reports whether the record describes a playlist rather
// than a single downloadable video.
func (m *Metadata) IsPlaylist() bool {
	return m.Type == "playlist"
}

// UploadYear returns the 4-digit upload year, or "" when the upload
// date is absent or malformed.
func (m *Metadata) UploadYear() string {
	if len(m.UploadDate) < 4 {
		return ""
	}
	year := m.UploadDate[:4]
	for _, r := range year {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return year
}

// ChannelName returns the channel name, falling back to the uploader
// and then to a fixed placeholder so folder names are never empty.
func (m *Metadata) ChannelName() string {
	if m.Channel != "" {
		return m.Channel
	}
	if m.Uploader != "" {
		return m.Uploader
	}
	return "Unknown_Channel"
}

// BestURL returns the canonical page URL for the record, preferring
// the webpage URL over the raw entry link.
func (m *Metadata) BestURL() string {
	if m.WebpageURL != "" {
		return m.WebpageURL
	}
	return m.URL
}
