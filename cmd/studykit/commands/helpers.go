package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/studykit/studykit-go/internal/embedder"
	"github.com/studykit/studykit-go/internal/llm"
	"github.com/studykit/studykit-go/internal/provider"
	"github.com/studykit/studykit-go/internal/rag"
	"github.com/studykit/studykit-go/internal/registry"
)

// buildEmbedder validates the Jina configuration from the environment and
// constructs the embedder used for both ingestion and retrieval.
func buildEmbedder(log *slog.Logger) (*embedder.JinaEmbedder, error) {
	cfg := &embedder.JinaConfig{
		APIKey:  os.Getenv("JINA_API_KEY"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
		BaseURL: os.Getenv("EMBEDDING_ENDPOINT"),
	}
	if err := embedder.Validate(log, cfg); err != nil {
		return nil, err
	}
	return embedder.NewJinaEmbedder(cfg), nil
}

// buildStore connects to the Qdrant instance named by the QDRANT_* env vars.
// The caller owns the returned store and must Close it.
func buildStore() (*rag.QdrantStore, error) {
	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)

	store, err := rag.NewQdrantStore(&rag.QdrantConfig{
		Host:   host,
		Port:   port,
		APIKey: os.Getenv("QDRANT_API_KEY"),
		UseTLS: os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}
	return store, nil
}

// openRegistry opens the document registry. STUDYKIT_REGISTRY_DB overrides
// the default path (~/.studykit/documents.db); set it to "disabled" to run
// without a registry. A registry that fails to open is logged and skipped
// rather than aborting the command: the vector store stays usable without it.
func openRegistry(log *slog.Logger) *registry.SQLiteRegistry {
	dbPath := os.Getenv("STUDYKIT_REGISTRY_DB")
	if dbPath == "disabled" {
		log.Info("registry: disabled via STUDYKIT_REGISTRY_DB=disabled")
		return nil
	}
	if dbPath == "" {
		var err error
		dbPath, err = registry.DefaultDBPath()
		if err != nil {
			log.Warn("registry: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil
		}
	}

	reg, err := registry.Open(dbPath)
	if err != nil {
		log.Warn("registry: failed to open, disabling", slog.Any("error", err))
		return nil
	}
	log.Info("registry: opened", slog.String("path", dbPath))
	return reg
}

// buildGenerator constructs the LLM generator from the environment-selected
// provider backend.
func buildGenerator(ctx context.Context, log *slog.Logger) (*llm.Generator, error) {
	providerCfg := provider.ConfigFromEnv()
	chatModel, err := provider.New(ctx, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise model provider: %w", err)
	}
	log.Info("provider initialised",
		slog.String("provider", string(providerCfg.Backend)),
		slog.String("model", providerCfg.Model),
	)
	return llm.NewGenerator(chatModel, getEnvInt("MODEL_MAX_CONTEXT_TOKENS", 0)), nil
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
