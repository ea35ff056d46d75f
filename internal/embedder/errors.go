package embedder

import "fmt"

// Error reports a failed embedding batch. Batch is the zero-based index of
// the batch that failed, which locates the offending chunks without logging
// their contents.
type Error struct {
	// Batch is the zero-based index of the failed batch.
	Batch int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("jina embedder: batch %d failed: %v", e.Batch, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
