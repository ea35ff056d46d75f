package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studykit/studykit-go/internal/logging"
)

// DefaultRetriever implements Retriever over a QueryEmbedder and a
// VectorStore. The topic is embedded in query task mode, then matched
// against one document's collection.
type DefaultRetriever struct {
	embedder QueryEmbedder
	store    VectorStore
	topK     uint64
}

// NewRetriever creates a retriever over the given embedder and store.
// A topK of zero falls back to DefaultTopK.
func NewRetriever(embedder QueryEmbedder, store VectorStore, topK uint64) *DefaultRetriever {
	if topK == 0 {
		topK = DefaultTopK
	}
	return &DefaultRetriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}
}

// Retrieve returns the chunk texts most relevant to topic from the named
// collection, in descending relevance order. A missing collection yields a
// RetrievalError wrapping ErrCollectionNotFound so callers can map it to a
// not-found response; any other failure is wrapped the same way with its
// underlying cause.
func (r *DefaultRetriever) Retrieve(ctx context.Context, topic, collectionID string) ([]string, error) {
	logger := logging.FromContext(ctx)

	exists, err := r.store.CollectionExists(ctx, collectionID)
	if err != nil {
		return nil, &RetrievalError{Topic: topic, Collection: collectionID,
			Err: fmt.Errorf("checking collection: %w", err)}
	}
	if !exists {
		return nil, &RetrievalError{Topic: topic, Collection: collectionID, Err: ErrCollectionNotFound}
	}

	vector, err := r.embedder.EmbedQuery(ctx, topic)
	if err != nil {
		return nil, &RetrievalError{Topic: topic, Collection: collectionID,
			Err: fmt.Errorf("embedding query: %w", err)}
	}

	matches, err := r.store.Query(ctx, collectionID, vector, r.topK)
	if err != nil {
		return nil, &RetrievalError{Topic: topic, Collection: collectionID,
			Err: fmt.Errorf("querying store: %w", err)}
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}

	logger.Debug("retrieved chunks",
		slog.String("collection", collectionID),
		slog.Int("count", len(texts)),
	)

	return texts, nil
}
