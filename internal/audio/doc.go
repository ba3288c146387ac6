// Package audio handles metadata embedding for audio-only downloads.
//
// Video containers get their metadata through the ffmpeg mux in the
// download pipeline; MP3 outputs go through the Tagger here instead,
// which writes ID3v2 frames directly.
//
//	tagger := audio.NewTagger(settings)
//	err := tagger.SaveTags("/music/Title.mp3", meta, pngCover)
package audio
