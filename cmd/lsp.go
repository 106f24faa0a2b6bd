// Copyright © 2024 The GHLS authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luthersystems/ghls/lsp"
)

// Version is reported to clients in the initialize result.
var Version = "0.1.0"

// LSPCommand creates the "lsp" cobra command. Embedders can pass
// WithProvider to serve data from a source other than GitHub.
func LSPCommand(opts ...Option) *cobra.Command {
	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the ghls Language Server Protocol server",
		Long: `Start an LSP server for markdown files.

After the client sends "initialized" the server loads the issues, members,
repositories and wiki pages of the configured repository in the background.
Completions and hovers are answered from whatever has been loaded so far.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  ghls lsp                           Start with stdio transport
  ghls lsp --stdio                   Same as above (explicit)
  ghls lsp --port 7998               Start with TCP on port 7998
  ghls lsp --owner entur --repo helm-charts

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "ghls lsp --stdio" for markdown files.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg := newConfig(opts)
			sess, err := cfg.newSession(c.Context())
			if err != nil {
				return err
			}
			srv := lsp.New(sess, lsp.WithVersion(Version))

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Noticef("ghls LSP server listening on %s", addr)
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
