// Package parser turns raw tool output into diagnostics.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cxxlint/cxxlint/internal/domain"
)

var (
	// diagnosticLine matches "file.cpp:12:5: warning: message [check-name]".
	diagnosticLine = regexp.MustCompile(`^(.+):(\d+):(\d+):\s(\w+):\s?(.*)\[([a-zA-Z\d\-\.]+)\]$`)
	// bareDiagnosticLine matches diagnostics that carry no check name,
	// such as compiler errors surfaced by clang-tidy.
	bareDiagnosticLine = regexp.MustCompile(`^(.+):(\d+):(\d+):\s(\w+):\s?(.*)$`)
	// locationLike flags lines that look positional but failed both patterns.
	locationLike = regexp.MustCompile(`^\S+:\d+:\d+:`)
)

// TidyParser extracts diagnostics from clang-tidy's textual output.
type TidyParser struct {
	log *log.Logger
}

func NewTidy(logger *log.Logger) *TidyParser {
	return &TidyParser{log: logger}
}

func (p *TidyParser) Tool() string { return domain.ToolClangTidy }

// Parse reads clang-tidy stdout line by line. Lines between diagnostics are
// attached to the preceding diagnostic as its suggestion snippet.
func (p *TidyParser) Parse(raw domain.RawToolOutput) ([]domain.Diagnostic, domain.ParseResult) {
	var (
		diags  []domain.Diagnostic
		result domain.ParseResult
	)

	for _, line := range strings.Split(raw.Stdout, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if diag, ok := p.parseLine(line, raw.File); ok {
			diags = append(diags, diag)
			continue
		}
		if locationLike.MatchString(line) {
			result.Warnings++
			p.log.Debug("unparseable diagnostic line", "file", raw.File, "line", line)
			continue
		}
		if len(diags) > 0 {
			last := &diags[len(diags)-1]
			last.Suggestion = append(last.Suggestion, line)
		}
	}

	if raw.ExitCode != 0 && len(diags) == 0 {
		result.Unreliable = true
	}
	return diags, result
}

func (p *TidyParser) parseLine(line, target string) (domain.Diagnostic, bool) {
	rule := ""
	m := diagnosticLine.FindStringSubmatch(line)
	if m != nil {
		rule = m[6]
	} else {
		m = bareDiagnosticLine.FindStringSubmatch(line)
	}
	if m == nil {
		return domain.Diagnostic{}, false
	}

	lineNo, err := strconv.Atoi(m[2])
	if err != nil {
		return domain.Diagnostic{}, false
	}
	col, err := strconv.Atoi(m[3])
	if err != nil {
		return domain.Diagnostic{}, false
	}

	return domain.Diagnostic{
		File:     normalizePath(m[1], target),
		Line:     lineNo,
		Col:      col,
		Severity: domain.ParseSeverity(m[4]),
		Tool:     domain.ToolClangTidy,
		Rule:     rule,
		Message:  strings.TrimSpace(m[5]),
	}, true
}

// normalizePath maps an absolute path emitted by the tool back to the
// repo-relative target path when they refer to the same file.
func normalizePath(reported, target string) string {
	if strings.HasSuffix(reported, "/"+target) || reported == target {
		return target
	}
	return reported
}
