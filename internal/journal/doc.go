// Package journal persists a record of every patching action in SQLite.
//
// Each invocation opens a run (identified by a UUID) and appends one row per
// rename, delete, or sidecar merge, including dry-run decisions. The journal
// is an audit trail for the CLI report command, not operational state: the
// patch pass never reads it back, and clearing the database only loses
// history. Schema changes bump schemaVersion; users delete the database to
// adopt a new schema.
package journal
