// Package config manages application settings.
//
// Settings are persisted as a single JSON document:
//
//	settings, err := config.Load("~/.config/downloadallofit/settings.json")
//	settings.OutputFormat = config.FormatMKV
//	err = settings.Save(path)
//
// A missing settings file is not an error; Load returns
// DefaultSettings in that case. The downloader core only ever reads
// a Settings value, it never writes one back.
package config
