// Package dicomseries describes the source DICOM series behind one converted
// acquisition and extracts the vendor metadata the sidecar patches need.
//
// The Series descriptor is read-only input supplied by the upstream
// conversion. The only metadata read back out of the DICOMs is the MT flip
// angle, buried in the Siemens CSA series header as a free WIP parameter;
// everything else the sidecars need comes from the converter itself.
package dicomseries
