// Package http provides a small HTTP client for fetching thumbnail
// previews while a download is in flight.
//
//	client := http.NewClient(10 * time.Second)
//	data, err := client.Get(ctx, thumbnailURL)
//
// The media transfer itself is handled by the external engine, never
// by this package.
package http
