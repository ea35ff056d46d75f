package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studykit/studykit-go/internal/logging"
	"github.com/studykit/studykit-go/internal/rag"
)

// NewSummarizeCmd constructs the `studykit summarize` command, which retrieves
// the chunks most relevant to a topic and prints a generated summary.
func NewSummarizeCmd() *cobra.Command {
	var documentID string

	cmd := &cobra.Command{
		Use:   "summarize [topic]",
		Short: "Generate a topic summary from an ingested document",
		Long: `Generate a grounded summary of a topic from an ingested document.

The topic is embedded and matched against the document's vector collection;
the most relevant chunks are handed to the LLM as context.

Examples:
  studykit summarize --id 3f2a... "photosynthesis"
  studykit summarize --id 3f2a... "the causes of the French Revolution"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			ctx := logging.WithLogger(cmd.Context(), log)
			topic := args[0]

			gen, err := buildGenerator(ctx, log)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			store, err := buildStore()
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}
			defer func() { _ = store.Close() }()

			chunks, err := rag.NewRetriever(emb, store, 0).Retrieve(ctx, topic, documentID)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			summary, err := gen.Summarize(ctx, topic, chunks)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			fmt.Println(summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&documentID, "id", "", "Document ID returned by ingestion (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
