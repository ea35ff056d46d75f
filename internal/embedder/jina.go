// Package embedder implements the rag.Embedder and rag.QueryEmbedder
// interfaces over the Jina embeddings REST API via plain HTTP. No SDK
// dependency is required.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the public Jina embeddings API base.
	DefaultBaseURL = "https://api.jina.ai/v1"

	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "jina-embeddings-v3"

	// Dimensions is the vector length requested from the API. All collections
	// are created for vectors of this size, so it is fixed rather than
	// configurable.
	Dimensions = 1024

	// BatchSize is the number of texts sent per API call. Batches are issued
	// sequentially; a document of N chunks makes ceil(N/8) calls.
	BatchSize = 8

	// taskPassage is the task mode for document chunks at ingestion time.
	taskPassage = "retrieval.passage"

	// taskQuery is the task mode for search topics at retrieval time.
	taskQuery = "retrieval.query"
)

// JinaConfig holds the settings for constructing a JinaEmbedder.
type JinaConfig struct {
	// BaseURL is the API base URL. Empty selects DefaultBaseURL.
	BaseURL string
	// APIKey is the Jina API key, sent as a Bearer token.
	APIKey string
	// Model is the embedding model name. Empty selects DefaultModel.
	Model string
}

// JinaEmbedder converts text into dense vectors using the Jina embeddings
// API. It is safe for concurrent use. Document chunks and search queries use
// different task modes so each side gets the encoding it was trained for.
type JinaEmbedder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewJinaEmbedder constructs a JinaEmbedder from the given config.
func NewJinaEmbedder(cfg *JinaConfig) *JinaEmbedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &JinaEmbedder{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// jinaEmbedRequest is the JSON body sent to the embeddings endpoint.
type jinaEmbedRequest struct {
	Input        []string `json:"input"`
	Model        string   `json:"model"`
	Task         string   `json:"task"`
	Dimensions   int      `json:"dimensions"`
	LateChunking bool     `json:"late_chunking"`
}

// jinaEmbedResponse is the JSON body returned from the embeddings endpoint.
type jinaEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// EmbedDocuments converts document chunks into embeddings using the passage
// task mode. Texts are sent in sequential batches of BatchSize; the returned
// slice is parallel to the input. On a batch failure the whole call fails and
// no partial embeddings are returned.
func (e *JinaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += BatchSize {
		end := min(start+BatchSize, len(texts))

		batch, err := e.embed(ctx, texts[start:end], taskPassage)
		if err != nil {
			return nil, &Error{Batch: start / BatchSize, Err: err}
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

// EmbedQuery converts a single search topic into an embedding using the
// query task mode.
func (e *JinaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	batch, err := e.embed(ctx, []string{text}, taskQuery)
	if err != nil {
		return nil, fmt.Errorf("jina embedder: embed query: %w", err)
	}
	return batch[0], nil
}

// embed issues one embeddings API call for up to BatchSize texts.
func (e *JinaEmbedder) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	payload, err := json.Marshal(jinaEmbedRequest{
		Input:        texts,
		Model:        e.model,
		Task:         task,
		Dimensions:   Dimensions,
		LateChunking: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var result jinaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Detail != "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, result.Detail)
		}
		return nil, fmt.Errorf("%s", msg)
	}

	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Data))
	}

	embeddings := make([][]float32, 0, len(texts))
	for i, d := range result.Data {
		if len(d.Embedding) != Dimensions {
			return nil, fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(d.Embedding), Dimensions)
		}
		embeddings = append(embeddings, d.Embedding)
	}

	return embeddings, nil
}
