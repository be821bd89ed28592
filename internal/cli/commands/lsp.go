package commands

import (
	"github.com/leapstack-labs/bettersql/internal/cli/config"
	"github.com/leapstack-labs/bettersql/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC and publishes
the syntax error of every open query as a diagnostic. The custom request
"bsql/compile" returns the SQL of an open document.`,
		Example: `  # Start LSP server (usually called by an editor)
  bsql lsp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := config.GetLogger(cmd.Context())
			server := lsp.NewServerWithLogger(cmd.InOrStdin(), cmd.OutOrStdout(), logger)
			server.SetVersion(version)
			return server.Run()
		},
	}

	return cmd
}
