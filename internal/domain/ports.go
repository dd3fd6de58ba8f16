package domain

import "context"

// FileSelector expands the configured patterns (and optional diff
// scope) into the ordered set of files to analyze.
type FileSelector interface {
	Select(cfg RunConfig, scope DiffScope) ([]FileTarget, error)
}

// DiffProvider acquires changed-line information from source control.
type DiffProvider interface {
	Changes(cfg RunConfig) (DiffScope, error)
}

// ToolRunner probes and invokes the external checkers.
type ToolRunner interface {
	// Probe verifies every enabled tool is present and usable. It runs
	// once, before any per-file work.
	Probe(ctx context.Context, cfg RunConfig) error
	// Run invokes the enabled tools over the targets with bounded
	// concurrency and returns one captured output per (tool, file)
	// unit.
	Run(ctx context.Context, cfg RunConfig, targets []FileTarget, scope DiffScope) ([]RawToolOutput, error)
}

// ParseResult carries per-tool parse bookkeeping alongside the
// extracted diagnostics.
type ParseResult struct {
	// Warnings counts individually malformed records that were
	// skipped.
	Warnings int
	// Unreliable marks a total parse failure: non-empty output that
	// yielded zero diagnostics when some were expected.
	Unreliable bool
}

// OutputParser turns one tool's raw output into diagnostics. The set
// of parsers is closed: one per supported tool output format.
type OutputParser interface {
	Tool() string
	Parse(raw RawToolOutput) ([]Diagnostic, ParseResult)
}

// Sink renders the finished report into one representation. Sinks are
// independent and order-insensitive; a failing sink never changes the
// computed pass/fail status.
type Sink interface {
	Name() string
	Write(report *Report) error
}

// CommitInfo stamps reports with the analyzed revision.
type CommitInfo interface {
	Hash(repoRoot string) (string, error)
}
