package domain

import (
	"fmt"
	"time"
)

// Process exit codes, one per failure class, so callers can branch on
// cause.
const (
	ExitPass            = 0
	ExitChecksFailed    = 1
	ExitConfig          = 2
	ExitSelection       = 3
	ExitToolUnavailable = 4
	ExitRunTimeout      = 5
)

// FatalError is an error that aborts the run before a report is
// produced and maps to a distinct process exit code.
type FatalError interface {
	error
	ExitCode() int
}

// ConfigError reports bad or conflicting configuration. Token names
// the offending input.
type ConfigError struct {
	Token  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %s", e.Token, e.Reason)
}

func (e *ConfigError) ExitCode() int { return ExitConfig }

// SelectionError reports that no files matched the configured
// selection.
type SelectionError struct {
	Root       string
	Extensions []string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("no files matched under %s for extensions %v; adjust --extensions or --ignore", e.Root, e.Extensions)
}

func (e *SelectionError) ExitCode() int { return ExitSelection }

// ToolUnavailableError reports a missing or unusable external tool,
// detected eagerly before any per-file work.
type ToolUnavailableError struct {
	Tool   string
	Reason string
}

func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("%s is unavailable: %s; install it or point --tool-version at its location", e.Tool, e.Reason)
}

func (e *ToolUnavailableError) ExitCode() int { return ExitToolUnavailable }

// RunTimeoutError reports that the global run deadline elapsed.
// Partial results gathered before cancellation are discarded.
type RunTimeoutError struct {
	Limit time.Duration
}

func (e *RunTimeoutError) Error() string {
	return fmt.Sprintf("run exceeded the global timeout of %s; partial results discarded", e.Limit)
}

func (e *RunTimeoutError) ExitCode() int { return ExitRunTimeout }
