// Package sidecar amends BIDS JSON sidecar files with the metadata the
// upstream converter leaves out.
//
// Files are selected by substring match on the base name and merged
// additively: only the fixed keys for a pattern are written, existing keys are
// never removed, and unrelated documents are left alone. The MT flip angle
// pattern consults the source DICOM series through a lazy resolver; when no
// value is resolvable the field is simply omitted.
package sidecar
