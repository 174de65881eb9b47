// Package ingest turns uploaded inspection spreadsheets into
// normalized records ready for bulk insertion.
package ingest

import "errors"

var (
	// ErrMalformedInput means the file could not be read as tabular
	// data at all. Nothing is written for such an upload.
	ErrMalformedInput = errors.New("file cannot be parsed as tabular data")

	// ErrNoRecordsFound means the file parsed structurally but held no
	// usable rows. Reported to the caller as a warning, not a fault.
	ErrNoRecordsFound = errors.New("no records found in file")
)
