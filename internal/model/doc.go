// Package model defines the core data structures shared by the
// resolver, executor and batch orchestrator.
//
// # Metadata
//
// Metadata is the typed view of the extraction engine's JSON output:
//
//	var meta model.Metadata
//	json.Unmarshal(engineOutput, &meta)
//	if meta.IsPlaylist() { ... }
//
// # FailureRecord
//
// FailureRecord pairs a URL with the reason it failed. Failures are
// aggregated across a batch and reported once at completion.
package model
