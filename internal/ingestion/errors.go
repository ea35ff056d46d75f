package ingestion

import "fmt"

// IngestionError wraps any failure while ingesting one document with the
// upload file name for diagnostics. Ingestion is all-or-nothing from the
// caller's perspective: when an IngestionError is returned, no metadata is.
type IngestionError struct {
	// FileName is the original upload file name.
	FileName string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed for %q: %v", e.FileName, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IngestionError) Unwrap() error {
	return e.Err
}
