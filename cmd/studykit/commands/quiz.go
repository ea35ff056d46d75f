package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studykit/studykit-go/internal/llm"
	"github.com/studykit/studykit-go/internal/logging"
	"github.com/studykit/studykit-go/internal/rag"
)

// NewQuizCmd constructs the `studykit quiz` command, which generates practice
// questions about a topic from an ingested document.
func NewQuizCmd() *cobra.Command {
	var documentID string
	var questionsType string

	cmd := &cobra.Command{
		Use:   "quiz [topic]",
		Short: "Generate practice questions from an ingested document",
		Long: `Generate practice questions about a topic from an ingested document.

Questions are grounded in the document's most relevant chunks. The --type
flag selects the question style.

Examples:
  studykit quiz --id 3f2a... "cell division"
  studykit quiz --id 3f2a... --type fill-in-the-blank "key treaty dates"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			ctx := logging.WithLogger(cmd.Context(), log)
			topic := args[0]

			qt, err := llm.ParseQuestionsType(questionsType)
			if err != nil {
				return fmt.Errorf("quiz: %w", err)
			}

			gen, err := buildGenerator(ctx, log)
			if err != nil {
				return fmt.Errorf("quiz: %w", err)
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("quiz: %w", err)
			}

			store, err := buildStore()
			if err != nil {
				return fmt.Errorf("quiz: %w", err)
			}
			defer func() { _ = store.Close() }()

			chunks, err := rag.NewRetriever(emb, store, 0).Retrieve(ctx, topic, documentID)
			if err != nil {
				return fmt.Errorf("quiz: %w", err)
			}

			questions, err := gen.Questions(ctx, topic, chunks, qt)
			if err != nil {
				return fmt.Errorf("quiz: %w", err)
			}

			for i, q := range questions {
				fmt.Printf("%d. %s\n", i+1, q)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&documentID, "id", "", "Document ID returned by ingestion (required)")
	cmd.Flags().StringVar(&questionsType, "type", string(llm.QuestionsMultipleChoice), "Question style: multiple-choice or fill-in-the-blank")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
