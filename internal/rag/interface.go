// Package rag defines the interfaces for the retrieval-augmented-generation
// core: per-document vector collections, text embedding, and top-k retrieval.
// Concrete implementations (Qdrant, the Jina embedder) satisfy these
// interfaces so the pipelines never depend on a specific backend.
package rag

import (
	"context"
)

// DefaultTopK is the number of chunks considered relevant for downstream
// summarisation and question generation.
const DefaultTopK = 10

// ScoredChunk is the payload text of a nearest-neighbour match together with
// its similarity score. It exists only for the duration of one retrieval call.
type ScoredChunk struct {
	// Text is the chunk text stored in the match's payload.
	Text string

	// Score is the dot-product similarity assigned by the store.
	Score float32
}

// VectorStore is the interface for per-document vector collections.
// Collection names are opaque identifiers chosen by the caller; possessing a
// name is sufficient to write to or query the collection.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// CreateCollection creates a new collection configured for vectors of the
	// given size with dot-product distance.
	CreateCollection(ctx context.Context, name string, vectorSize uint64) error

	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Upsert stores id/vector/text triples into the collection as one batch.
	// The three slices must be parallel: ids[i] and texts[i] belong to
	// vectors[i]. A length mismatch is rejected before any network call.
	Upsert(ctx context.Context, collection string, ids []string, vectors [][]float32, texts []string) error

	// Query returns the top-limit matches for queryVector in descending
	// similarity order.
	Query(ctx context.Context, collection string, queryVector []float32, limit uint64) ([]ScoredChunk, error)

	// DeleteCollection removes the named collection and all its entries.
	DeleteCollection(ctx context.Context, name string) error

	// Close releases any resources held by the store.
	Close() error
}

// Embedder converts document texts into dense vector embeddings using the
// provider's passage task mode. The returned slice is parallel to the input.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryEmbedder converts a single search query into an embedding using the
// provider's query task mode. Query and passage encodings differ; a retriever
// must never embed a query through the Embedder interface.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns the most relevant chunk texts for a topic from one
// document's collection, in descending relevance order.
type Retriever interface {
	Retrieve(ctx context.Context, topic, collectionID string) ([]string, error)
}
