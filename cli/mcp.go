// server/cli/mcp.go
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ViniZap4/carnet-server/mcpserver"
)

func MCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the notes as MCP tools over stdio",
		Long:  "Serve the notes as MCP tools over stdio. Logs go to stderr; stdout carries the protocol.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}

			roots, closeRoots, err := openRootStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			root := defaultRoot(cmd.Context(), cfg, roots, log)
			closeRoots()
			if root == "" {
				return errors.New("no notes root: pass --root or set CARNET_ROOT")
			}

			return mcpserver.NewServer(root, Version, log).ServeStdio()
		},
	}
}
