package audio

import (
	"github.com/bogem/id3v2"

	"github.com/QuesoDad/DownloadAllOfIt/internal/config"
	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
)

// Tagger writes ID3 tags to downloaded MP3 files.
//
// Audio-only outputs cannot carry metadata through the ffmpeg mux the
// way video containers do, so the Tagger embeds it directly:
//   - Title (TIT2)
//   - Artist (TPE1, from the uploader)
//   - Year (TYER, from the upload date)
//   - Description (COMM comment frame)
//   - Cover art (APIC, PNG front cover)
//
// Example:
//
//	tagger := NewTagger(settings)
//	err := tagger.SaveTags("/music/Title.mp3", meta, pngBytes)
type Tagger struct {
	settings *config.Settings
}

// NewTagger creates a Tagger honoring the embed switches in settings.
func NewTagger(settings *config.Settings) *Tagger {
	return &Tagger{settings: settings}
}

// SaveTags writes ID3 tags to an MP3 file.
//
// Fields disabled in the settings are left untouched so external tag
// editors keep their edits. artwork carries PNG bytes for the front
// cover; pass nil to skip cover embedding.
func (t *Tagger) SaveTags(path string, meta *model.Metadata, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if t.settings.EmbedTitle && meta.Title != "" {
		tag.SetTitle(meta.Title)
	}
	if t.settings.EmbedUploader && meta.Uploader != "" {
		tag.SetArtist(meta.Uploader)
	}
	if year := meta.UploadYear(); year != "" {
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, year)
	}
	if t.settings.EmbedDescription && meta.Description != "" {
		comment := id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "",
			Text:        meta.Description,
		}
		tag.AddCommentFrame(comment)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/png",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
