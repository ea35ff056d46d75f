// Package commands defines all Cobra CLI commands for the studykit binary.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/studykit/studykit-go/internal/audit"
	"github.com/studykit/studykit-go/internal/config"
	"github.com/studykit/studykit-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studykit",
		Short: "StudyKit — turn your PDFs into summaries and practice questions",
		Long: `StudyKit is a RAG backend for study material.

It ingests PDF documents into a per-document vector collection, then answers
topic requests with grounded summaries and practice question sets generated
by an LLM from the retrieved content.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.studykit/config.yaml).
See 'studykit --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Bootstrap logger from whatever is already in the environment;
			// config.Load only fills env vars that are still unset.
			log := newLogger()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Rebuild with the loaded LOG_LEVEL/LOG_FORMAT before auditing.
			log = newLogger()

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.studykit/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewIngestCmd(),
		NewSummarizeCmd(),
		NewQuizCmd(),
		NewDocumentsCmd(),
		NewVersionCmd(),
	)

	return root
}

// newLogger constructs a logger from the LOG_LEVEL and LOG_FORMAT env vars.
func newLogger() *slog.Logger {
	return logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}
