// Package ingestion implements the document ingestion pipeline.
// It extracts text from an uploaded PDF, chunks the content, embeds each
// chunk, and upserts the results into a freshly created per-document vector
// collection. The pipeline is invoked by the HTTP ingest endpoint and by the
// `studykit ingest` CLI command.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studykit/studykit-go/internal/logging"
	"github.com/studykit/studykit-go/internal/pdf"
	"github.com/studykit/studykit-go/internal/rag"
)

// DocumentMetadata identifies one ingested document. The ID doubles as the
// vector collection name; clients pass it back to query the document.
type DocumentMetadata struct {
	// ID is the collection identifier assigned at ingestion.
	ID string `json:"id"`

	// FileName is the original upload file name.
	FileName string `json:"file_name"`

	// Chunks is the number of chunks stored in the collection.
	Chunks int `json:"chunks"`
}

// Splitter divides extracted text into chunks small enough to embed.
type Splitter interface {
	Split(text string) []string
}

// Recorder persists document metadata in a registry. Registry failures are
// non-fatal: the vector collection is the source of truth and stays usable
// even when the registry write fails.
type Recorder interface {
	Record(ctx context.Context, id, fileName string) error
}

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// VectorSize is the embedding dimension used when creating collections.
	// Defaults to 1024 if zero.
	VectorSize uint64
}

// Pipeline orchestrates the extract, chunk, embed, upsert flow for one
// uploaded document.
type Pipeline struct {
	extractor pdf.Extractor
	splitter  Splitter
	embedder  rag.Embedder
	store     rag.VectorStore
	registry  Recorder
	cfg       *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies.
// registry may be nil when no metadata registry is configured.
func NewPipeline(extractor pdf.Extractor, splitter Splitter, embedder rag.Embedder, store rag.VectorStore, registry Recorder, cfg *Config) (*Pipeline, error) {
	if extractor == nil {
		return nil, fmt.Errorf("ingestion: extractor must not be nil")
	}
	if splitter == nil {
		return nil, fmt.Errorf("ingestion: splitter must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.VectorSize == 0 {
		cfg.VectorSize = 1024
	}

	return &Pipeline{
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		registry:  registry,
		cfg:       cfg,
	}, nil
}

// Ingest processes one uploaded document and returns its metadata. The
// returned ID names the vector collection holding the document's chunks.
//
// A failure after the collection has been created can leave an orphaned
// collection behind; it is unreachable (its ID is never returned) and is not
// rolled back.
func (p *Pipeline) Ingest(ctx context.Context, fileName string, data []byte) (*DocumentMetadata, error) {
	logger := logging.FromContext(ctx)

	text, err := p.extractor.Extract(ctx, data)
	if err != nil {
		return nil, &IngestionError{FileName: fileName, Err: fmt.Errorf("extracting text: %w", err)}
	}

	chunks := p.splitter.Split(text)

	id := uuid.NewString()

	if err := p.store.CreateCollection(ctx, id, p.cfg.VectorSize); err != nil {
		return nil, &IngestionError{FileName: fileName, Err: fmt.Errorf("creating collection: %w", err)}
	}

	if len(chunks) == 0 {
		logger.Warn("document produced no chunks",
			slog.String("file_name", fileName),
			slog.String("document_id", id),
		)
	} else {
		embeddings, err := p.embedder.EmbedDocuments(ctx, chunks)
		if err != nil {
			return nil, &IngestionError{FileName: fileName, Err: fmt.Errorf("embedding chunks: %w", err)}
		}

		ids := make([]string, len(chunks))
		for i := range ids {
			ids[i] = uuid.NewString()
		}

		if err := p.store.Upsert(ctx, id, ids, embeddings, chunks); err != nil {
			return nil, &IngestionError{FileName: fileName, Err: fmt.Errorf("storing chunks: %w", err)}
		}
	}

	if p.registry != nil {
		if err := p.registry.Record(ctx, id, fileName); err != nil {
			logger.Warn("failed to record document in registry",
				slog.String("document_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	logger.Info("document ingested",
		slog.String("file_name", fileName),
		slog.String("document_id", id),
		slog.Int("chunks", len(chunks)),
	)

	return &DocumentMetadata{ID: id, FileName: fileName, Chunks: len(chunks)}, nil
}
