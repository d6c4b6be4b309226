// Package services defines shared plumbing consumed by the patching pass and
// the CLI commands.
//
// Key responsibilities:
//   - Context helpers that stamp series IDs, run IDs, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper so failures carry the
//     stage and operation that produced them.
//
// Use these helpers when wiring new pass logic so error handling and log
// fields stay uniform across the tool.
package services
