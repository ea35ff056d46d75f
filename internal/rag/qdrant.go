package rag

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// payloadTextKey is the single payload field stored with every point.
const payloadTextKey = "text"

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements VectorStore backed by a Qdrant instance. Unlike a
// single-index store, every ingested document gets its own collection, so
// collection names are passed per call rather than fixed at construction.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client
}

// NewQdrantStore creates a new QdrantStore connected to the configured
// instance. Collections are created per document by the ingestion pipeline,
// not here.
func NewQdrantStore(cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	return &QdrantStore{client: client}, nil
}

// CreateCollection creates a collection for vectors of the given size using
// dot-product distance. Dot product matches the embedding model's training
// objective; this store never falls back to another metric.
func (s *QdrantStore) CreateCollection(ctx context.Context, name string, vectorSize uint64) error {
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Dot,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", name, err)
	}
	return nil
}

// CollectionExists reports whether the named collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("qdrant: failed to check collection %q: %w", name, err)
	}
	return exists, nil
}

// Upsert stores id/vector/text triples into the collection as a single batch
// call. A length mismatch between the slices aborts before any network call;
// truncating to the shortest slice would desynchronise chunks from their
// vectors.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, ids []string, vectors [][]float32, texts []string) error {
	if len(ids) != len(vectors) || len(ids) != len(texts) {
		return fmt.Errorf("qdrant: upsert batch mismatch: %d ids, %d vectors, %d texts",
			len(ids), len(vectors), len(texts))
	}

	points := make([]*qdrant.PointStruct, 0, len(ids))
	for i := range ids {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(ids[i]),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{payloadTextKey: texts[i]}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert into %q failed: %w", collection, err)
	}

	return nil
}

// Query performs a dot-product similarity search and returns the top-limit
// matches in descending score order. Each match's payload must carry a
// non-empty text field; a malformed payload is an error rather than a
// silently dropped result.
func (s *QdrantStore) Query(ctx context.Context, collection string, queryVector []float32, limit uint64) ([]ScoredChunk, error) {
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query against %q failed: %w", collection, err)
	}

	chunks := make([]ScoredChunk, 0, len(results))
	for i, r := range results {
		text := ""
		if p := r.Payload; p != nil {
			if v, ok := p[payloadTextKey]; ok {
				text = v.GetStringValue()
			}
		}
		if text == "" {
			return nil, fmt.Errorf("qdrant: result %d in %q has no %q payload field", i, collection, payloadTextKey)
		}
		chunks = append(chunks, ScoredChunk{Text: text, Score: r.Score})
	}

	return chunks, nil
}

// DeleteCollection removes the named collection and all its points.
func (s *QdrantStore) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("qdrant: failed to delete collection %q: %w", name, err)
	}
	return nil
}

// Ping calls the Qdrant HealthCheck RPC. Used by readiness probes.
func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant: health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}
