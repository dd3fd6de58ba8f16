package cli

import (
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/cxxlint/cxxlint/internal/adapters/inbound/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the cxxlint MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var repoRoot string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the cxxlint MCP server (stdio)",
		Long:  "Start the cxxlint MCP server using stdio transport. This lets AI coding assistants run checks and list analyzable files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if repoRoot == "" {
				repoRoot = "."
			}
			abs, err := filepath.Abs(repoRoot)
			if err != nil {
				return err
			}
			s := mcpadapter.NewCxxlintMCPServer(abs)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&repoRoot, "path", "", "Repository root (defaults to current working directory)")

	return cmd
}
