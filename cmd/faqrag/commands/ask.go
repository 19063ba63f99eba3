package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthcareplus/faqrag-go/internal/logging"
)

// NewAskCmd constructs the `faqrag ask` command, which answers a single
// question on the command line and prints the result to stdout.
func NewAskCmd() *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the clinic FAQ assistant a question",
		Long: `Ask a single question against the clinic FAQ knowledge base.

The question is embedded, matched against the indexed FAQ chunks, and an
answer is generated from the best matches.

Examples:
  faqrag ask "what are your office hours?"
  faqrag ask --sources "do you accept Blue Cross insurance?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			p, err := buildPipeline(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer p.Close()

			result, err := p.Engine.Query(ctx, args[0])
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			fmt.Println(result.Answer)
			fmt.Printf("\nconfidence: %.3f\n", result.Confidence)

			if showSources {
				for i, src := range result.Sources {
					fmt.Printf("\n[%d] (%.3f) %s\n", i+1, src.Similarity, src.Content)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSources, "sources", false, "Print the retrieved source chunks after the answer")

	return cmd
}
