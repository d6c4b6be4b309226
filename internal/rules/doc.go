// Package rules holds the ordered filename rewrite pipeline applied to every
// converted file in an acquisition directory.
//
// Rules run in a fixed sequence and are cumulative: each rule sees the
// mutations of the rules before it, and several rules may rewrite the same
// name. The two deletion rules short-circuit the pipeline, since the file is
// removed outright. The full pipeline is idempotent: running it over an
// already-patched name produces no further changes.
package rules
