// Package patcher drives the post-conversion patch pass over one acquisition
// directory.
//
// The pass is strictly sequential: the directory listing is snapshotted once,
// each file runs through the rename/delete rule pipeline, then the sidecar
// patches are applied over the resulting tree. Snapshotting up front makes the
// iteration immune to the renames and deletes it performs itself. The pass
// assumes exclusive access to the directory and enforces it with an advisory
// lock.
//
// Filesystem errors abort the run; there are no retries and no partial-state
// recovery beyond what the journal records.
package patcher
