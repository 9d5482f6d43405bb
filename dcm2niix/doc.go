// Package dcm2niix wraps the external dcm2niix DICOM to NIfTI converter.
//
// The package does not parse DICOM or write NIfTI itself: it assembles a
// command line with friendlier defaults than the converter's own (compressed
// output, overwrite on filename collision, recursive search depth 5), runs
// the binary, and reports its exit status and output. Flags the wrapper does
// not know about pass through to the converter unchanged, and an explicitly
// supplied flag always beats the wrapper's default for the same flag.
package dcm2niix
