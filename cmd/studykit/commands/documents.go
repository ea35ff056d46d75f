package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewDocumentsCmd constructs the `studykit documents` command, which lists
// the documents recorded in the local registry.
func NewDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List ingested documents from the local registry",
		Long: `List the documents recorded in the local registry, newest first.

The registry is an index, not the source of truth: documents ingested while
the registry was disabled or unreachable will not appear here but remain
queryable by ID.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			reg := openRegistry(log)
			if reg == nil {
				return fmt.Errorf("documents: registry is disabled or unavailable")
			}
			defer func() { _ = reg.Close() }()

			docs, err := reg.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("documents: %w", err)
			}

			if len(docs) == 0 {
				fmt.Println("No documents ingested yet.")
				return nil
			}

			for _, d := range docs {
				fmt.Printf("%s  %s  %s\n",
					d.ID,
					d.IngestedAt.Format(time.RFC3339),
					d.FileName,
				)
			}
			return nil
		},
	}

	return cmd
}
