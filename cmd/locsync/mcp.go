package main

import (
	"github.com/spf13/cobra"

	"github.com/locsync/locsync/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server for locsync on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openDB()
			if err != nil {
				return err
			}

			server := mcp.NewServer(dbCtx, mcp.Options{
				DefaultUser: appConfig.DefaultUser,
				ColSep:      appConfig.ColSepRune(),
				OutcomeLog:  appConfig.Import.OutcomeLog,
				Version:     version,
			})
			return server.Run(cmd.Context())
		},
	}

	return cmd
}
