// Package services defines shared utilities consumed by the generation
// pipeline stages and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp record names, stage names, and run
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into record-skippable versus run-fatal outcomes.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
