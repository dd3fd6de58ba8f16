// Package tui renders reports for terminal output.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cxxlint/cxxlint/internal/domain"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	ruleStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport renders a report as a styled terminal string. Diagnostics are
// grouped per file in the order they appear in the report.
func RenderReport(report *domain.Report) string {
	var b strings.Builder

	title := headerStyle.Render("cxxlint")
	verdict := passStyle.Render("passed")
	if !report.Passed {
		verdict = failStyle.Render("failed")
	}
	countsLine := summaryLine(report.Summary)

	b.WriteString(boxStyle.Render(title + "\n" + countsLine + "\n\n" + verdict))
	b.WriteString("\n\n")

	if len(report.Diagnostics) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n")
	} else {
		renderByFile(&b, report.Diagnostics)
	}

	renderFailures(&b, "Timed out", report.Summary.Timeouts)
	renderUnreliable(&b, report.Summary.UnreliableTools)

	if report.CommitHash != "" {
		hash := report.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		b.WriteString("\n")
		b.WriteString("  " + separatorLine + "\n")
		b.WriteString("  " + dimStyle.Render("commit "+hash) + "\n")
	}

	return b.String()
}

func summaryLine(s domain.Summary) string {
	parts := []string{}
	if s.Errors > 0 {
		parts = append(parts, errorTagStyle.Render(fmt.Sprintf("%d errors", s.Errors)))
	}
	if s.Warnings > 0 {
		parts = append(parts, warnTagStyle.Render(fmt.Sprintf("%d warnings", s.Warnings)))
	}
	if s.Infos > 0 {
		parts = append(parts, infoTagStyle.Render(fmt.Sprintf("%d info", s.Infos)))
	}
	if len(parts) == 0 {
		return dimStyle.Render("no diagnostics")
	}
	return strings.Join(parts, "  ")
}

func renderByFile(b *strings.Builder, diags []domain.Diagnostic) {
	currentFile := ""
	for _, d := range diags {
		if d.File != currentFile {
			if currentFile != "" {
				b.WriteString("\n")
			}
			currentFile = d.File
			b.WriteString("  " + fileStyle.Render(d.File) + "\n")
		}
		renderDiagnostic(b, d)
	}
}

func renderDiagnostic(b *strings.Builder, d domain.Diagnostic) {
	position := dimStyle.Render(fmt.Sprintf("%d:%d", d.Line, d.Col))
	line := fmt.Sprintf("    %s %s  %s", severityTag(d.Severity), position, d.Message)
	if d.Rule != "" {
		line += "  " + ruleStyle.Render("["+d.Rule+"]")
	}
	b.WriteString(line + "\n")

	for _, snippet := range d.Suggestion {
		b.WriteString("         " + faintStyle.Render(snippet) + "\n")
	}
}

func renderFailures(b *strings.Builder, title string, failures []domain.ToolFailure) {
	if len(failures) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render(title) + "  " + dimStyle.Render(fmt.Sprintf("(%d)", len(failures))) + "\n")
	for _, f := range failures {
		b.WriteString(fmt.Sprintf("    %s %s  %s\n",
			warnTagStyle.Render("●"),
			f.Tool,
			dimStyle.Render(f.File),
		))
	}
}

func renderUnreliable(b *strings.Builder, tools []string) {
	if len(tools) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Unreliable output") + "  " + dimStyle.Render(fmt.Sprintf("(%d)", len(tools))) + "\n")
	for _, tool := range tools {
		b.WriteString(fmt.Sprintf("    %s %s\n",
			warnTagStyle.Render("●"),
			tool,
		))
	}
}

func severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}
