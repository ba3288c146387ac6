// Package download executes single download items.
//
// The Executor takes one resolved URL through the full pipeline:
// metadata fetch, destination layout, the engine transfer (with a
// concurrent best-effort thumbnail preview), post-processing, and the
// idempotency ledger record. The batch orchestrator drives Executors
// sequentially; this package knows nothing about batch state.
//
// Outcomes are values, not errors: skipped, downloaded, cancelled and
// failed items all come back as an ItemResult so the orchestrator can
// aggregate them without unwinding.
package download
