package domain

import "sort"

// ToolFailure records a non-fatal per-file tool problem (currently
// only timeouts) surfaced in the report summary.
type ToolFailure struct {
	Tool   string `json:"tool"`
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Summary holds the aggregate counts for a run.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`

	// TotalDetected counts every diagnostic produced by the tools,
	// including ones dropped by diff-scope filtering.
	TotalDetected int `json:"total_detected"`

	ParseWarnings   int           `json:"parse_warnings"`
	UnreliableTools []string      `json:"unreliable_tools,omitempty"`
	Timeouts        []ToolFailure `json:"timeouts,omitempty"`
	SinkFailures    []string      `json:"sink_failures,omitempty"`
}

// Report is the aggregated, deduplicated, sorted result of a run.
// Built once, never mutated; all sink writers consume it read-only.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Summary     Summary      `json:"summary"`
	Passed      bool         `json:"passed"`
	CommitHash  string       `json:"commit_hash,omitempty"`
}

// SortDiagnostics orders diagnostics by file, then line, then column,
// then tool. The sort is stable so equal keys keep arrival order.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return a.Tool < b.Tool
	})
}

// Dedupe removes exact (file, line, col, tool, rule) collisions,
// keeping the first occurrence. The input must already be sorted.
func Dedupe(diags []Diagnostic) []Diagnostic {
	seen := make(map[string]struct{}, len(diags))
	out := diags[:0]
	for _, d := range diags {
		key := d.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

// BuildReport merges diagnostics into a finished report: sorted,
// deduplicated, counted, and judged against the configured
// thresholds. droppedByScope is the count removed by diff-scope
// filtering; summary carries the non-fatal failures collected during
// the run. The report is complete once built; callers must not change
// it between sink deliveries.
func BuildReport(diags []Diagnostic, droppedByScope int, summary Summary, commitHash string, cfg RunConfig) *Report {
	sorted := make([]Diagnostic, len(diags))
	copy(sorted, diags)
	SortDiagnostics(sorted)
	sorted = Dedupe(sorted)

	for _, d := range sorted {
		switch d.Severity {
		case SeverityError:
			summary.Errors++
		case SeverityWarning:
			summary.Warnings++
		default:
			summary.Infos++
		}
	}
	summary.TotalDetected = len(sorted) + droppedByScope

	return &Report{
		Diagnostics: sorted,
		Summary:     summary,
		Passed:      passesThresholds(summary, cfg),
		CommitHash:  commitHash,
	}
}

// passesThresholds is a pure function of the summary counts and the
// configured failure policy.
func passesThresholds(s Summary, cfg RunConfig) bool {
	switch cfg.FailOn {
	case SeverityError:
		if s.Errors > 0 {
			return false
		}
	case SeverityWarning:
		if s.Errors > 0 || s.Warnings > 0 {
			return false
		}
	case SeverityInfo:
		if s.Errors > 0 || s.Warnings > 0 || s.Infos > 0 {
			return false
		}
	}
	if cfg.MaxWarnings >= 0 && s.Warnings > cfg.MaxWarnings {
		return false
	}
	return true
}

// ExitCode maps the finished report to the process exit code. Fatal
// errors never reach this point; they carry their own codes.
func (r *Report) ExitCode(cfg RunConfig) int {
	if cfg.TimeoutsFatal && len(r.Summary.Timeouts) > 0 {
		return ExitToolUnavailable
	}
	if !r.Passed {
		return ExitChecksFailed
	}
	return ExitPass
}
