// Package commands defines all Cobra CLI commands for the faqrag binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/healthcareplus/faqrag-go/internal/audit"
	"github.com/healthcareplus/faqrag-go/internal/config"
	"github.com/healthcareplus/faqrag-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "faqrag",
		Short: "faqrag — retrieval-grounded FAQ assistant for the clinic",
		Long: `faqrag answers patient questions from the clinic's FAQ knowledge base.

Questions are matched against embedded FAQ chunks in a Qdrant vector store;
the best matches ground an LLM-generated answer, so responses stay on what
the clinic has actually published.

The answer provider is selected via the LLM_PROVIDER environment variable
or a YAML config file (~/.faqrag/config.yaml).
See 'faqrag --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.faqrag/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewVersionCmd(),
	)

	return root
}
