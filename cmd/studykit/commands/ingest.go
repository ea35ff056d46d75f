package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studykit/studykit-go/internal/chunker"
	"github.com/studykit/studykit-go/internal/ingestion"
	"github.com/studykit/studykit-go/internal/logging"
	"github.com/studykit/studykit-go/internal/pdf"
)

// NewIngestCmd constructs the `studykit ingest` command, which runs the
// ingestion pipeline on a local PDF file without going through the server.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.pdf>",
		Short: "Ingest a PDF document into the vector store",
		Long: `Extract, chunk, and embed a local PDF into a new vector collection.

Prints the document ID on success. Use the ID with 'studykit summarize' and
'studykit quiz', or with the /api/summary and /api/questions endpoints.

Required environment variables:
  JINA_API_KEY         Jina embeddings API key
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_API_KEY       Optional API key for authenticated clusters

Examples:
  studykit ingest ./lecture-notes.pdf
  QDRANT_HOST=qdrant.internal studykit ingest ./textbook-chapter-3.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			ctx := logging.WithLogger(cmd.Context(), log)

			filePath := args[0]
			if !strings.EqualFold(filepath.Ext(filePath), ".pdf") {
				return fmt.Errorf("ingest: only PDF files are supported, got %q", filepath.Base(filePath))
			}

			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("ingest: failed to read %s: %w", filePath, err)
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			store, err := buildStore()
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer func() { _ = store.Close() }()

			reg := openRegistry(log)
			var recorder ingestion.Recorder
			if reg != nil {
				recorder = reg
				defer func() { _ = reg.Close() }()
			}

			pipeline, err := ingestion.NewPipeline(pdf.NewTextExtractor(), chunker.New(), emb, store, recorder, nil)
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			meta, err := pipeline.Ingest(ctx, filepath.Base(filePath), data)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			fmt.Printf("Ingested %s (%d chunks)\nDocument ID: %s\n", meta.FileName, meta.Chunks, meta.ID)
			return nil
		},
	}

	return cmd
}
