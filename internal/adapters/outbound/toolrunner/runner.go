// Package toolrunner executes clang-format and clang-tidy against selected
// files with bounded parallelism.
package toolrunner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cxxlint/cxxlint/internal/domain"
)

// Runner invokes the clang tools. Probe must succeed before Run is called.
type Runner struct {
	log        *log.Logger
	formatPath string
	tidyPath   string
}

// New creates a runner. Tool paths are resolved by Probe.
func New(logger *log.Logger) *Runner {
	return &Runner{log: logger}
}

// unit is one tool invocation against one file.
type unit struct {
	tool string
	path string
	args []string
	file string
}

// Run executes every enabled tool against every target and collects raw
// outputs in deterministic target order. A unit that exceeds the per-file
// timeout is recorded as timed out rather than failing the run; exceeding
// the overall run timeout aborts with partial results discarded.
func (r *Runner) Run(ctx context.Context, cfg domain.RunConfig, targets []domain.FileTarget, scope domain.DiffScope) ([]domain.RawToolOutput, error) {
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	units := r.buildUnits(cfg, targets, scope)
	if len(units) == 0 {
		return nil, nil
	}

	results := make([]domain.RawToolOutput, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(cfg.Jobs, len(units)))

	for i, u := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			out, err := r.execute(gctx, cfg, u)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return nil, &domain.RunTimeoutError{Limit: cfg.RunTimeout}
		}
		return nil, err
	}
	return results, nil
}

func (r *Runner) buildUnits(cfg domain.RunConfig, targets []domain.FileTarget, scope domain.DiffScope) []unit {
	var units []unit
	for _, target := range targets {
		ranges := scopedRanges(cfg, scope, target.Path)
		if cfg.StyleEnabled() {
			units = append(units, unit{
				tool: domain.ToolClangFormat,
				path: r.formatPath,
				args: formatArgs(cfg, target.Path, ranges),
				file: target.Path,
			})
		}
		if cfg.TidyEnabled() {
			units = append(units, unit{
				tool: domain.ToolClangTidy,
				path: r.tidyPath,
				args: tidyArgs(cfg, target.Path, ranges),
				file: target.Path,
			})
		}
	}
	return units
}

func scopedRanges(cfg domain.RunConfig, scope domain.DiffScope, file string) []domain.LineRange {
	if !cfg.DiffScoped() || scope == nil {
		return nil
	}
	changes, ok := scope[file]
	if !ok {
		return nil
	}
	return changes.RangesFor(cfg.LinesChangedOnly)
}

func formatArgs(cfg domain.RunConfig, file string, ranges []domain.LineRange) []string {
	args := []string{"--style=" + cfg.Style, "--output-replacements-xml"}
	for _, rng := range ranges {
		args = append(args, fmt.Sprintf("--lines=%d:%d", rng.First, rng.Last))
	}
	return append(args, file)
}

func tidyArgs(cfg domain.RunConfig, file string, ranges []domain.LineRange) []string {
	var args []string
	if cfg.TidyChecks != "" {
		args = append(args, "-checks="+cfg.TidyChecks)
	}
	if cfg.Database != "" {
		args = append(args, "-p", cfg.Database)
	}
	for _, extra := range cfg.ExtraArgs {
		args = append(args, "--extra-arg="+extra)
	}
	if filter := lineFilter(file, ranges); filter != "" {
		args = append(args, "--line-filter="+filter)
	}
	return append(args, file)
}

// lineFilter renders the clang-tidy JSON line filter restricting diagnostics
// to the changed ranges of a file.
func lineFilter(file string, ranges []domain.LineRange) string {
	if len(ranges) == 0 {
		return ""
	}
	type entry struct {
		Name  string  `json:"name"`
		Lines [][]int `json:"lines"`
	}
	e := entry{Name: filepath.Base(file)}
	for _, rng := range ranges {
		e.Lines = append(e.Lines, []int{rng.First, rng.Last})
	}
	raw, err := json.Marshal([]entry{e})
	if err != nil {
		return ""
	}
	return string(raw)
}

func (r *Runner) execute(ctx context.Context, cfg domain.RunConfig, u unit) (domain.RawToolOutput, error) {
	unitCtx := ctx
	if cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		unitCtx, cancel = context.WithTimeout(ctx, cfg.ToolTimeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(unitCtx, u.path, u.args...)
	cmd.Dir = cfg.RepoRoot
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("running tool", "tool", u.tool, "file", u.file)
	err := cmd.Run()

	out := domain.RawToolOutput{
		Tool:   u.tool,
		File:   u.file,
		Args:   u.args,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if unitCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		out.TimedOut = true
		r.log.Warn("tool timed out", "tool", u.tool, "file", u.file, "limit", cfg.ToolTimeout)
		return out, nil
	}
	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("running %s on %s: %w", u.tool, u.file, err)
	}
	return out, nil
}
