// Package mcp exposes the analysis pipeline to AI assistants over the
// Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewCxxlintMCPServer creates an MCP server with the cxxlint tools
// registered. The repoRoot is the root of the tree to analyze.
func NewCxxlintMCPServer(repoRoot string) *server.MCPServer {
	s := server.NewMCPServer(
		"cxxlint",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, repoRoot)

	return s
}
