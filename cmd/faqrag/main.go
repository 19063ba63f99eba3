// Command faqrag is the entry point for the clinic FAQ assistant.
// It provides a CLI interface (via Cobra) and an HTTP server exposing the
// question-answering API.
package main

import (
	"fmt"
	"os"

	"github.com/healthcareplus/faqrag-go/cmd/faqrag/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
