package domain

import "fmt"

// Tool names of the external checkers this orchestrator drives.
const (
	ToolClangFormat = "clang-format"
	ToolClangTidy   = "clang-tidy"
)

// Severity of a normalized diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Rank orders severities from least (info) to most (error) severe.
// Unknown severities rank below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ParseSeverity normalizes a tool-reported severity word. clang-tidy
// emits "note" lines for contextual output; those map to info.
func ParseSeverity(word string) Severity {
	switch word {
	case "error", "fatal":
		return SeverityError
	case "warning":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Replacement is a suggested fix: replace Length bytes at Offset with Text.
type Replacement struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Text   string `json:"text"`
}

// Diagnostic is one normalized finding from an external tool.
// Line and Col are 1-based. Diagnostics are value objects; the
// uniqueness key is (File, Line, Col, Tool, Rule).
type Diagnostic struct {
	File        string       `json:"file"`
	Line        int          `json:"line"`
	Col         int          `json:"col"`
	Severity    Severity     `json:"severity"`
	Tool        string       `json:"tool"`
	Rule        string       `json:"rule"`
	Message     string       `json:"message"`
	Replacement *Replacement `json:"replacement,omitempty"`
	Suggestion  []string     `json:"suggestion,omitempty"`
}

// Key returns the deduplication key.
func (d Diagnostic) Key() string {
	return fmt.Sprintf("%s:%d:%d:%s:%s", d.File, d.Line, d.Col, d.Tool, d.Rule)
}

// FileTarget is a resolved analysis target. Path is slash-separated and
// relative to the configured repo root.
type FileTarget struct {
	Path string `json:"path"`
}

// RawToolOutput is the captured result of one (tool, file) invocation.
// It is owned by the tool runner until handed to a parser.
type RawToolOutput struct {
	Tool     string
	File     string
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}
