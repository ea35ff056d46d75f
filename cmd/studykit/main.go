// Command studykit is the entry point for the studykit study material
// service. It provides a CLI interface (via Cobra) and an HTTP server
// exposing document ingestion, summaries, and practice question generation.
package main

import (
	"fmt"
	"os"

	"github.com/studykit/studykit-go/cmd/studykit/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
