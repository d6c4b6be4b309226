// Package bidsname parses BIDS-style filenames into an ordered sequence of
// key-value entities and bare tokens, plus a file extension.
//
// The Name type supports the queries and mutations the patching rules need:
// presence checks on keys, tokens, and key=value pairs, regex search over the
// serialized stem, and entity add/remove with canonical BIDS ordering on
// insert. Serialization back to a string is deterministic given the component
// sequence, so an unchanged Name round-trips byte for byte.
//
// Tokens the parser does not recognize pass through untouched; the upstream
// converter owns the token vocabulary.
package bidsname
