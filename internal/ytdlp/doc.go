// Package ytdlp wraps an external yt-dlp compatible binary.
//
// The Engine type covers the two concerns the downloader needs:
//   - Metadata extraction (flat for playlists, full for single videos)
//   - Media transfer with line-parsed progress and cooperative cancel
//
// # Basic Usage
//
//	engine := ytdlp.NewEngine("/usr/bin/yt-dlp", settings)
//
//	meta, err := engine.ExtractFlat(ctx, url)
//
//	err = engine.Download(ctx, ytdlp.DownloadRequest{
//	    URL:        meta.BestURL(),
//	    OutputBase: "/videos/Channel/Some Title",
//	}, func(percent float64) {
//	    fmt.Printf("%.1f%%\r", percent)
//	}, nil)
//
// Cancellation is checked between output lines, so a long fragment
// download ends at the next progress tick rather than immediately.
package ytdlp
