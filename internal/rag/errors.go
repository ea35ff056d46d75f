package rag

import (
	"errors"
	"fmt"
)

// ErrCollectionNotFound indicates a retrieval was attempted against a
// collection identifier the store does not know. It distinguishes a missing
// document from a document with no matching chunks.
var ErrCollectionNotFound = errors.New("collection not found")

// RetrievalError wraps any failure during topic retrieval with the topic and
// collection identifier for diagnostics. Retrieval is all-or-nothing: when a
// RetrievalError is returned, no partial results are.
type RetrievalError struct {
	// Topic is the search topic that was being retrieved.
	Topic string

	// Collection is the collection identifier the retrieval targeted.
	Collection string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for topic %q in collection %s: %v", e.Topic, e.Collection, e.Err)
}

// Unwrap returns the underlying cause so callers can match sentinel errors
// such as ErrCollectionNotFound with errors.Is.
func (e *RetrievalError) Unwrap() error {
	return e.Err
}
