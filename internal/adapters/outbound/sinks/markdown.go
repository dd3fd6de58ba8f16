// Package sinks delivers finished reports to their destinations: JSON files,
// CI annotations, pull request comments and job summaries.
package sinks

import (
	"fmt"
	"strings"

	"github.com/cxxlint/cxxlint/internal/domain"
)

// commentMarker identifies report comments so later runs can find and
// update their own comment instead of posting duplicates.
const commentMarker = "<!-- cxxlint report -->"

// markdownReport renders the report as GitHub-flavored markdown, suitable
// for both thread comments and job summaries.
func markdownReport(report *domain.Report) string {
	var b strings.Builder
	b.WriteString(commentMarker)
	b.WriteString("\n# cxxlint report\n\n")

	s := report.Summary
	if len(report.Diagnostics) == 0 {
		b.WriteString("No issues found. :tada:\n")
	} else {
		fmt.Fprintf(&b, "**%d errors**, **%d warnings**, **%d info**\n\n", s.Errors, s.Warnings, s.Infos)
		currentFile := ""
		for _, d := range report.Diagnostics {
			if d.File != currentFile {
				currentFile = d.File
				fmt.Fprintf(&b, "### `%s`\n\n", d.File)
			}
			writeMarkdownDiagnostic(&b, d)
		}
	}

	writeMarkdownFailures(&b, "Timed out", s.Timeouts)
	writeMarkdownUnreliable(&b, s.UnreliableTools)

	if report.CommitHash != "" {
		fmt.Fprintf(&b, "\n<sub>commit %s</sub>\n", report.CommitHash)
	}
	return b.String()
}

func writeMarkdownDiagnostic(b *strings.Builder, d domain.Diagnostic) {
	fmt.Fprintf(b, "- **%s** `%d:%d` %s", d.Severity, d.Line, d.Col, d.Message)
	if d.Rule != "" {
		fmt.Fprintf(b, " [`%s`]", d.Rule)
	}
	b.WriteString("\n")
	if len(d.Suggestion) > 0 {
		b.WriteString("\n  ```\n")
		for _, line := range d.Suggestion {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("  ```\n")
	}
	if d.Replacement != nil {
		fmt.Fprintf(b, "\n  Suggested fix (replace %d bytes at offset %d):\n\n  ```\n  %s\n  ```\n",
			d.Replacement.Length, d.Replacement.Offset, d.Replacement.Text)
	}
}

func writeMarkdownFailures(b *strings.Builder, title string, failures []domain.ToolFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, f := range failures {
		fmt.Fprintf(b, "- %s: `%s` (%s)\n", f.Tool, f.File, f.Reason)
	}
}

func writeMarkdownUnreliable(b *strings.Builder, tools []string) {
	if len(tools) == 0 {
		return
	}
	b.WriteString("\n### Unreliable tool output\n\n")
	for _, tool := range tools {
		fmt.Fprintf(b, "- `%s` produced output that could not be trusted\n", tool)
	}
}
