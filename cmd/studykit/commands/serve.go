package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/studykit/studykit-go/internal/chunker"
	"github.com/studykit/studykit-go/internal/ingestion"
	"github.com/studykit/studykit-go/internal/logging"
	"github.com/studykit/studykit-go/internal/pdf"
	"github.com/studykit/studykit-go/internal/rag"
	"github.com/studykit/studykit-go/internal/registry"
	"github.com/studykit/studykit-go/internal/server"
	"github.com/studykit/studykit-go/internal/tracing"
)

// NewServeCmd constructs the `studykit serve` command, which starts the HTTP
// server exposing the ingestion and study material API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the StudyKit HTTP server",
		Long: `Start the StudyKit HTTP server on localhost.

The server exposes a REST API for ingesting PDF documents and generating
topic summaries and practice questions from the ingested content.

Required environment variables:
  JINA_API_KEY         Jina embeddings API key
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  MODEL_PROVIDER       LLM backend: openai, azure, ollama (default: openai)

Examples:
  studykit serve
  studykit serve --port 9090
  MODEL_PROVIDER=ollama studykit serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := newLogger()
			ctx = logging.WithLogger(ctx, log)

			// Explicit flags win over STUDYKIT_HOST / STUDYKIT_PORT.
			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("STUDYKIT_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("STUDYKIT_PORT", port)
			}

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing. Opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			gen, err := buildGenerator(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			store, err := buildStore()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = store.Close() }()

			reg := openRegistry(log)
			if reg != nil {
				defer func() { _ = reg.Close() }()
			}

			// The registry interfaces must stay nil when no registry is open;
			// a typed nil pointer inside a non-nil interface would defeat the
			// downstream nil checks.
			var recorder ingestion.Recorder
			var docRegistry registry.Registry
			if reg != nil {
				recorder = reg
				docRegistry = reg
			}

			pipeline, err := ingestion.NewPipeline(pdf.NewTextExtractor(), chunker.New(), emb, store, recorder, nil)
			if err != nil {
				return fmt.Errorf("serve: failed to create ingestion pipeline: %w", err)
			}

			retriever := rag.NewRetriever(emb, store, 0)

			pingers := []server.Pinger{
				server.NewDependencyPinger(store, "qdrant"),
			}
			if reg != nil {
				pingers = append(pingers, server.NewDependencyPinger(reg, "registry"))
			}

			srv, err := server.New(pipeline, retriever, gen, &server.Config{
				Host:     host,
				Port:     port,
				Logger:   log,
				Pingers:  pingers,
				APIKey:   os.Getenv("STUDYKIT_API_KEY"),
				Registry: docRegistry,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
