// Package application wires the domain pipeline together.
package application

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cxxlint/cxxlint/internal/domain"
)

// LintService orchestrates a run:
// acquire diff → select files → probe tools → run → parse → aggregate → deliver.
type LintService struct {
	selector domain.FileSelector
	diff     domain.DiffProvider
	runner   domain.ToolRunner
	parsers  map[string]domain.OutputParser
	commits  domain.CommitInfo
	sinks    []domain.Sink
	log      *log.Logger
}

func NewLintService(
	selector domain.FileSelector,
	diff domain.DiffProvider,
	runner domain.ToolRunner,
	parsers []domain.OutputParser,
	commits domain.CommitInfo,
	reportSinks []domain.Sink,
	logger *log.Logger,
) *LintService {
	byTool := make(map[string]domain.OutputParser, len(parsers))
	for _, p := range parsers {
		byTool[p.Tool()] = p
	}
	return &LintService{
		selector: selector,
		diff:     diff,
		runner:   runner,
		parsers:  byTool,
		commits:  commits,
		sinks:    reportSinks,
		log:      logger,
	}
}

// Run executes the full pipeline and returns the finished report. Fatal
// errors (bad config, empty selection, missing tools, run timeout) abort
// before a report exists; everything after tool execution degrades into
// summary entries instead of failing the run.
func (s *LintService) Run(ctx context.Context, cfg domain.RunConfig) (*domain.Report, error) {
	scope, err := s.acquireScope(cfg)
	if err != nil {
		return nil, err
	}

	targets, err := s.selector.Select(cfg, scope)
	if err != nil {
		return nil, err
	}
	s.log.Info("selected files", "count", len(targets))

	if err := s.runner.Probe(ctx, cfg); err != nil {
		return nil, err
	}

	outputs, err := s.runner.Run(ctx, cfg, targets, scope)
	if err != nil {
		return nil, err
	}

	diags, summary := s.parseOutputs(outputs)
	diags, dropped := domain.ApplyDiffScope(diags, scope, cfg.LinesChangedOnly)
	if dropped > 0 {
		s.log.Debug("dropped out-of-scope diagnostics", "count", dropped)
	}

	report := domain.BuildReport(diags, dropped, summary, s.commitHash(cfg), cfg)

	report.Summary.SinkFailures = s.deliver(report)
	return report, nil
}

// acquireScope loads changed-line data only when something downstream
// consumes it.
func (s *LintService) acquireScope(cfg domain.RunConfig) (domain.DiffScope, error) {
	if !cfg.DiffScoped() && cfg.DiffFile == "" && cfg.DiffBase == "" {
		return nil, nil
	}
	scope, err := s.diff.Changes(cfg)
	if err != nil {
		return nil, fmt.Errorf("acquiring diff: %w", err)
	}
	s.log.Info("diff scope acquired", "files", len(scope))
	return scope, nil
}

func (s *LintService) parseOutputs(outputs []domain.RawToolOutput) ([]domain.Diagnostic, domain.Summary) {
	var (
		diags   []domain.Diagnostic
		summary domain.Summary
	)
	unreliable := map[string]bool{}

	for _, raw := range outputs {
		if raw.TimedOut {
			summary.Timeouts = append(summary.Timeouts, domain.ToolFailure{
				Tool:   raw.Tool,
				File:   raw.File,
				Reason: "timed out",
			})
			continue
		}
		parser, ok := s.parsers[raw.Tool]
		if !ok {
			s.log.Warn("no parser registered", "tool", raw.Tool)
			continue
		}
		parsed, result := parser.Parse(raw)
		diags = append(diags, parsed...)
		summary.ParseWarnings += result.Warnings
		if result.Unreliable && !unreliable[raw.Tool] {
			unreliable[raw.Tool] = true
			summary.UnreliableTools = append(summary.UnreliableTools, raw.Tool)
			s.log.Warn("tool output unreliable", "tool", raw.Tool, "file", raw.File)
		}
	}
	return diags, summary
}

func (s *LintService) commitHash(cfg domain.RunConfig) string {
	if s.commits == nil {
		return ""
	}
	hash, err := s.commits.Hash(cfg.RepoRoot)
	if err != nil {
		s.log.Debug("no commit hash available", "err", err)
		return ""
	}
	return hash
}

// deliver writes the report to every configured sink and returns the
// names of the sinks that failed. The report itself is left untouched
// so every sink sees the same content; failures never change the
// verdict.
func (s *LintService) deliver(report *domain.Report) []string {
	var failed []string
	for _, sink := range s.sinks {
		if err := sink.Write(report); err != nil {
			s.log.Error("sink failed", "sink", sink.Name(), "err", err)
			failed = append(failed, sink.Name())
		}
	}
	return failed
}
