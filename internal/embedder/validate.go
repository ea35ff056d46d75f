package embedder

import (
	"fmt"
	"log/slog"
	"strings"
)

// knownChatModelFragments contains name fragments that identify chat models,
// which are not suitable for embedding. A configured model matching one of
// these gets a startup warning so the operator sees the misconfiguration
// before the first ingest fails.
var knownChatModelFragments = []string{
	"gpt-4",
	"gpt-3.5",
	"o1",
	"o3",
	"llama",
	"mistral",
	"mixtral",
	"gemma",
	"phi-",
	"claude",
	"deepseek",
	"qwen",
	"reader-lm",
}

// looksLikeChatModel returns true when the model name resembles a chat model
// rather than a dedicated embedding model.
func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	for _, fragment := range knownChatModelFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Validate is a pre-flight check of the embedding configuration. Call it at
// startup so operators get a clear error immediately rather than a cryptic
// failure during the first ingest. A clearly broken configuration (no API
// key) is an error; a suspicious model name is only a warning.
func Validate(log *slog.Logger, cfg *JinaConfig) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("embedder: no Jina API key configured, set JINA_API_KEY")
	}

	if cfg.Model != "" && looksLikeChatModel(cfg.Model) {
		log.Warn("embedder: configured model looks like a chat model, not an embedding model",
			slog.String("model", cfg.Model),
			slog.String("hint", "use a dedicated embedding model such as "+DefaultModel),
		)
	}

	return nil
}
