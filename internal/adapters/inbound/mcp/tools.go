package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cxxlint/cxxlint/internal/adapters/outbound/config"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/gitdiff"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/gitinfo"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/parser"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/selector"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/toolrunner"
	"github.com/cxxlint/cxxlint/internal/application"
	"github.com/cxxlint/cxxlint/internal/domain"
)

// registerTools registers the cxxlint MCP tools on the given server.
func registerTools(s *server.MCPServer, repoRoot string) {
	s.AddTool(
		mcplib.NewTool("cxxlint_check",
			mcplib.WithDescription("Run clang-format and clang-tidy over the tree and return the full report as JSON"),
			mcplib.WithString("style", mcplib.Description("clang-format style override (llvm, google, file, ...)")),
			mcplib.WithString("tidy_checks", mcplib.Description("clang-tidy checks glob list override")),
			mcplib.WithString("lines_changed_only", mcplib.Description("restrict findings to changed lines: none, added, or diff")),
			mcplib.WithString("diff_base", mcplib.Description("git revision to diff HEAD against")),
			mcplib.WithString("fail_on", mcplib.Description("minimum severity that fails the run")),
		),
		handleCheck(repoRoot),
	)

	s.AddTool(
		mcplib.NewTool("cxxlint_list_files",
			mcplib.WithDescription("List the files the analysis would cover, honoring extensions and ignore rules"),
			mcplib.WithString("extensions", mcplib.Description("Comma-separated extensions override, without dots")),
		),
		handleListFiles(repoRoot),
	)
}

// quietLogger keeps adapter logging out of the MCP stdio stream.
func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func handleCheck(repoRoot string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		var layer config.Layer
		args := req.GetArguments()
		strArg := func(key string, dst **string) {
			if v, _ := args[key].(string); v != "" {
				*dst = &v
			}
		}
		strArg("style", &layer.Style)
		strArg("tidy_checks", &layer.TidyChecks)
		strArg("lines_changed_only", &layer.LinesChangedOnly)
		strArg("diff_base", &layer.DiffBase)
		strArg("fail_on", &layer.FailOn)

		cfg, err := config.New().Resolve(repoRoot, layer)
		if err != nil {
			return errorResult(fmt.Sprintf("resolving configuration: %v", err)), nil
		}

		logger := quietLogger()
		svc := application.NewLintService(
			selector.New(logger),
			gitdiff.New(logger),
			toolrunner.New(logger),
			[]domain.OutputParser{
				parser.NewTidy(logger),
				parser.NewFormat(logger, cfg.RepoRoot),
			},
			gitinfo.New(),
			nil,
			logger,
		)

		report, err := svc.Run(ctx, cfg)
		if err != nil {
			return errorResult(fmt.Sprintf("check failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleListFiles(repoRoot string) server.ToolHandlerFunc {
	return func(_ context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		var layer config.Layer
		if v, _ := req.GetArguments()["extensions"].(string); v != "" {
			layer.Extensions = splitList(v)
		}

		cfg, err := config.New().Resolve(repoRoot, layer)
		if err != nil {
			return errorResult(fmt.Sprintf("resolving configuration: %v", err)), nil
		}

		targets, err := selector.New(quietLogger()).Select(cfg, nil)
		if err != nil {
			return errorResult(fmt.Sprintf("selecting files: %v", err)), nil
		}

		paths := make([]string, len(targets))
		for i, t := range targets {
			paths[i] = t.Path
		}
		return jsonResult(paths)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns an error content result.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
